package models

// Provider names the remote a manifest dependency is fetched from.
type Provider string

const (
	CURSE Provider = "curse"
)

func (p Provider) String() string {
	return string(p)
}

func ParseProvider(value string) (Provider, bool) {
	switch Provider(value) {
	case CURSE:
		return CURSE, true
	default:
		return "", false
	}
}
