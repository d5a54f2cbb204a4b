package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"

	"github.com/charlie-charlie-san/uiux-job-radar/internal/rules"
)

const keyHashLen = 16

// IdentityKey derives the dedup fingerprint of a posting. Title and company
// are folded and whitespace-collapsed so cosmetic differences across
// sources map to the same key. When both are empty the canonical URL is
// used, then the description.
func IdentityKey(title, company, rawURL, description string) string {
	t := rules.Fold(collapse(title))
	c := rules.Fold(collapse(company))
	if t != "" || c != "" {
		return "tc:" + digest(t+"\x1f"+c)
	}
	if u := canonicalURL(rawURL); u != "" {
		return "url:" + digest(u)
	}
	return "raw:" + digest(rules.Fold(collapse(description)))
}

func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:keyHashLen]
}

// canonicalURL lower-cases scheme and host, drops the fragment and
// tracking parameters, and sorts the remaining query.
func canonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") ||
			lk == "gclid" || lk == "fbclid" || lk == "msclkid" ||
			lk == "mc_cid" || lk == "mc_eid" {
			q.Del(k)
		}
	}
	for k := range q {
		sort.Strings(q[k])
	}
	u.RawQuery = q.Encode()
	return u.String()
}
