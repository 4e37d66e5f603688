// onboarding/slides.go
package onboarding

// SlideKind distinguishes the interactive demo slide from plain content.
type SlideKind string

const (
	KindContent SlideKind = "content"
	KindDemo    SlideKind = "demo"
)

type Slide struct {
	ID       string    `json:"id"`
	Headline string    `json:"headline"`
	SubLines []string  `json:"sub_lines,omitempty"`
	Kind     SlideKind `json:"kind"`
}

// DefaultSlides is the fixed onboarding deck shown to first-time users. The
// demo slide must stay last: it replaces the "next" affordance with the two
// terminal exit actions.
var DefaultSlides = []Slide{
	{ID: "welcome", Headline: "Welcome to Control Room", SubLines: []string{"Create, deploy and monitor AI agents from one place."}, Kind: KindContent},
	{ID: "agents", Headline: "Deploy agents in minutes", SubLines: []string{"Pick a template or bring your own.", "Agents report cost, latency and errors continuously."}, Kind: KindContent},
	{ID: "policies", Headline: "Set guardrails with policies", SubLines: []string{"Trigger on error rate, cost, latency or memory.", "Pause, restart or scale down automatically."}, Kind: KindContent},
	{ID: "marketplace", Headline: "Monetize your agents", SubLines: []string{"Publish to the marketplace and earn on every deployment."}, Kind: KindContent},
	{ID: "demo", Headline: "Try it yourself", SubLines: []string{"This is a live sandbox agent."}, Kind: KindDemo},
}
