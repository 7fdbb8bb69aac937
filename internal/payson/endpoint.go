package payson

// Credentials identify an API agent. Both values travel in request headers.
type Credentials struct {
	AgentID string
	APIKey  string
}

// Environment is a Payson deployment: the API base URL plus the page the
// buyer is forwarded to, with a single %s placeholder for the token.
type Environment struct {
	Name               string
	BaseURL            string
	ForwardURLTemplate string
}

var (
	Production = Environment{
		Name:               "production",
		BaseURL:            "https://api.payson.se",
		ForwardURLTemplate: "https://www.payson.se/paysecure/?token=%s",
	}
	Sandbox = Environment{
		Name:               "sandbox",
		BaseURL:            "https://test-api.payson.se",
		ForwardURLTemplate: "https://test-www.payson.se/paysecure/?token=%s",
	}
)

// ResolveEnvironment returns Sandbox when creds exactly equal one of the
// sandbox pairs and Production otherwise. Both halves must match.
func ResolveEnvironment(creds Credentials, sandbox []Credentials) Environment {
	for _, s := range sandbox {
		if s == creds {
			return Sandbox
		}
	}
	return Production
}
