package domain

// Principal is the authenticated identity attached to a request.
type Principal struct {
	ID          string
	DisplayName string
	PhotoURL    string
	Email       string
}

// Token is a signed session token handed to clients.
type Token string

func (t Token) String() string {
	return string(t)
}
