package reconcile

// Result is the report of one reconciliation pass. Proposed and Existing
// are the pre-apply mappings, Final is the post-apply re-read (equal to
// Existing when nothing was submitted), and Commands is the plan that was
// applied or, in check mode, would have been applied.
//
// Changed is true exactly when a non-empty plan was produced; in check
// mode it signals that applying would change the device.
type Result struct {
	Device    string   `json:"device"`
	Feature   string   `json:"feature"`
	Key       string   `json:"key,omitempty"`
	Intent    Intent   `json:"state"`
	Proposed  State    `json:"proposed"`
	Existing  State    `json:"existing"`
	Final     State    `json:"final"`
	Commands  []string `json:"commands"`
	Changed   bool     `json:"changed"`
	CheckMode bool     `json:"check_mode"`
}
