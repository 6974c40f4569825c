package voice

import "github.com/ksai0398/railway-navigation-app/internal/station"

// Fixed user-facing messages in both languages
var (
	DestinationReached = station.Phrase{
		En: "You have reached your destination.",
		Hi: "आप अपने गंतव्य पर पहुँच गए हैं।",
	}
	NoPathFound = station.Phrase{
		En: "No path found from the selected gate to your platform.",
		Hi: "चुने गए गेट से आपके प्लेटफॉर्म तक कोई रास्ता नहीं मिला।",
	}
	BookingNotFound = station.Phrase{
		En: "PNR not found. Please check the number and try again.",
		Hi: "PNR नहीं मिला। कृपया नंबर जाँचकर फिर से प्रयास करें।",
	}
)
