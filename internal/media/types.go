package media

type Type string

const (
	TypeLogo Type = "logo"
)

// Size returns the required dimensions of images of the type, or 0, 0 for an unknown type.
func (t Type) Size() (w int16, h int16) {
	switch t {
	case TypeLogo:
		return 16, 16
	default:
		return 0, 0
	}
}
