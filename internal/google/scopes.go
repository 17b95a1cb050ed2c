package google

import gmail "google.golang.org/api/gmail/v1"

// DefaultOAuthScopes are requested for every account. The assistant only
// reads mail.
var DefaultOAuthScopes = []string{
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",
	gmail.GmailReadonlyScope,
}
