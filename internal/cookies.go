package internal

const (
	COOKIE_ACCESS_TOKEN_NAME = "donorlink_session"
	COOKIE_REDIRECT_NAME     = "donorlink_redirect"
)
