package model

// ServiceKind identifies a bill-payment service.
type ServiceKind string

const (
	ServiceAirtime     ServiceKind = "airtime"
	ServiceData        ServiceKind = "data"
	ServiceElectricity ServiceKind = "electricity"
	ServiceTV          ServiceKind = "tv"
)

// Services lists the kinds in dashboard display order.
var Services = []ServiceKind{ServiceAirtime, ServiceData, ServiceElectricity, ServiceTV}

// Label returns the user-facing name of the service.
func (k ServiceKind) Label() string {
	switch k {
	case ServiceAirtime:
		return "Airtime"
	case ServiceData:
		return "Data"
	case ServiceElectricity:
		return "Electricity"
	case ServiceTV:
		return "Cable TV"
	default:
		return string(k)
	}
}

// CustomerPrompt returns the prompt for the identifier the service bills
// against (phone number, meter number, smartcard number).
func (k ServiceKind) CustomerPrompt() string {
	switch k {
	case ServiceAirtime, ServiceData:
		return "Enter the phone number to recharge:"
	case ServiceElectricity:
		return "Enter the meter number:"
	case ServiceTV:
		return "Enter the smartcard number:"
	default:
		return "Enter the customer ID:"
	}
}

// Valid reports whether k is one of the known service kinds.
func (k ServiceKind) Valid() bool {
	for _, s := range Services {
		if s == k {
			return true
		}
	}
	return false
}
