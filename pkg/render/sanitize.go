package render

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-docfill/pkg/markup"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

// SanitizePolicy returns the policy applied by Sanitize: user generated
// content rules plus the span attributes placeholders rely on. Author
// styling survives: style attributes and <style> blocks are kept verbatim.
func SanitizePolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowAttrs("class", "data-field").OnElements("span")
		p.AllowAttrs("class", "style").Globally()
		// AllowUnsafe only lifts the blanket drop of <script> and <style>;
		// script is still not an allowed element.
		p.AllowUnsafe(true)
		p.AllowElements("style")
		policy = p
	})
	return policy
}

// Sanitize strips scripts, handlers and other unsafe markup that a template
// author may have written, keeping placeholder spans intact. Text is
// re-escaped, so a literal quote comes back as &#34;.
func Sanitize(out markup.HTML) markup.HTML {
	return markup.HTML(SanitizePolicy().Sanitize(string(out)))
}
