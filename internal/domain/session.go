package domain

// UserSession is an active login on the remote server.
type UserSession struct {
	ID         string `json:"id"`
	ScreenName string `json:"screen_name"`
}

// SessionList is the envelope returned by GET /session.
type SessionList struct {
	Count    int           `json:"count"`
	Sessions []UserSession `json:"sessions"`
}
