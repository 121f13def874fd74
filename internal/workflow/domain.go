package workflow

import (
	"strings"

	"github.com/sells-group/enrich-cli/pkg/pipedrive"
)

// freeMailDomains are consumer mailbox providers that say nothing about a
// person's company.
var freeMailDomains = map[string]bool{
	"gmail.com":   true,
	"outlook.com": true,
	"yahoo.com":   true,
	"hotmail.com": true,
}

// emailDomain returns the lowercased part after "@", or "".
func emailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(email[at+1:]))
}

// companyDomain returns the email domain unless it belongs to a free mail
// provider.
func companyDomain(email string) string {
	d := emailDomain(email)
	if freeMailDomains[d] {
		return ""
	}
	return d
}

// hostOf normalises a website or domain to a bare lowercase host.
func hostOf(raw string) string {
	return pipedrive.HostOf(raw)
}

// uniqueStrings returns non-empty values in first-seen order.
func uniqueStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
