package modem

// CodeTokenInvalid is the error code the firmware returns for a missing or
// stale __RequestVerificationToken header.
const CodeTokenInvalid = 125001

const unknownErrorMessage = "Unknown error occurred"

var errorMessages = map[int]string{
	100002: "No support",
	100003: "Access denied",
	100004: "Busy",
	108001: "Wrong username",
	108002: "Wrong password",
	108003: "Already logged in",
	120001: "Voice busy",
	125001: "Wrong __RequestVerificationToken header",
}

var connectionStatuses = map[string]string{
	"2":   "Connection failed, the profile is invalid",
	"3":   "Connection failed, the profile is invalid",
	"5":   "Connection failed, the profile is invalid",
	"7":   "Network access not allowed",
	"8":   "Connection failed, the profile is invalid",
	"11":  "Network access not allowed",
	"12":  "Connection failed, roaming not allowed",
	"13":  "Connection failed, roaming not allowed",
	"14":  "Network access not allowed",
	"20":  "Connection failed, the profile is invalid",
	"21":  "Connection failed, the profile is invalid",
	"23":  "Connection failed, the profile is invalid",
	"27":  "Connection failed, the profile is invalid",
	"28":  "Connection failed, the profile is invalid",
	"29":  "Connection failed, the profile is invalid",
	"30":  "Connection failed, the profile is invalid",
	"31":  "Connection failed, the profile is invalid",
	"32":  "Connection failed, the profile is invalid",
	"33":  "Connection failed, the profile is invalid",
	"37":  "Network access not allowed",
	"112": "No autoconnect",
	"113": "No autoconnect on roaming",
	"114": "No reconnect on timeout",
	"115": "No reconnect on timeout on roaming",
	"201": "Connection failed, bandwidth exceeded",
	"900": "Connecting",
	"901": "Connected",
	"902": "Disconnected",
	"903": "Disconnecting",
	"904": "Connection failed or disabled",
}

var networkTypes = map[string]string{
	"0":  "No service",
	"1":  "GSM",
	"2":  "GPRS",
	"3":  "EDGE",
	"4":  "WCDMA",
	"5":  "HSDPA",
	"6":  "HSUPA",
	"7":  "HSPA",
	"8":  "TD-SCDMA",
	"9":  "HSPA +",
	"10": "EV-DO rev. 0",
	"11": "EV-DO rev. A",
	"12": "EV-DO rev. B",
	"13": "1xRTT",
	"14": "UMB",
	"15": "1xEVDV",
	"16": "3xRTT",
	"17": "HSPA + 64QAM",
	"18": "HSPA + MIMO",
	"19": "LTE",
	"21": "IS95A",
	"22": "IS95B",
	"23": "CDMA1x",
	"24": "EV-DO rev. 0",
	"25": "EV-DO rev. A",
	"26": "EV-DO rev. B",
	"27": "Hybrid CDMA1x",
	"28": "Hybrid EV-DO rev. 0",
	"29": "Hybrid EV-DO rev. A",
	"30": "Hybrid EV-DO rev. B",
	"31": "EHRPD rev. 0",
	"32": "EHRPD rev. A",
	"33": "EHRPD rev. B",
	"34": "Hybrid EHRPD rev. 0",
	"35": "Hybrid EHRPD rev. A",
	"36": "Hybrid EHRPD rev. B",
	"41": "UMTS",
	"42": "HSDPA",
	"43": "HSUPA",
	"44": "HSPA",
	"45": "HSPA +",
	"46": "DC-HSPA +",
	"61": "TD-SCDMA",
	"62": "TD-HSDPA",
	"63": "TD-HSUPA",
	"64": "TD-HSPA",
	"65": "TD-HSPA +",
	"81": "802.16E",

	// reported by newer firmware
	"101": "LTE",
}

func errorMessage(code int) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return unknownErrorMessage
}

func connectionStatus(code string) (string, error) {
	status, ok := connectionStatuses[code]
	if !ok {
		return "", &LookupError{Table: "connection status", Key: code}
	}
	return status, nil
}

func networkType(code string) string {
	if name, ok := networkTypes[code]; ok {
		return name
	}
	return "Unknown"
}
