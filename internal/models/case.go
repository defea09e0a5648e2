package models

// ToolKind identifies one of the purchasable hint tools
type ToolKind string

const (
	// ToolKindSignature reveals the signature macro crop for a candidate
	ToolKindSignature ToolKind = "signature"

	// ToolKindMetadata reveals an advisory about the metadata records
	ToolKindMetadata ToolKind = "metadata"

	// ToolKindFinancial reveals an advisory about the ledger trail
	ToolKindFinancial ToolKind = "financial"
)

// CandidateCount is the number of artworks shown per case (A/B/C)
const CandidateCount = 3

// ToolCosts holds the per-tool Investigation Point price for a case
type ToolCosts struct {
	Signature int `json:"signature" yaml:"signature"`
	Metadata  int `json:"metadata" yaml:"metadata"`
	Financial int `json:"financial" yaml:"financial"`
}

// For returns the cost of the given tool kind
func (c ToolCosts) For(kind ToolKind) int {
	switch kind {
	case ToolKindSignature:
		return c.Signature
	case ToolKindMetadata:
		return c.Metadata
	case ToolKindFinancial:
		return c.Financial
	}
	return 0
}

// CandidateMetadata is the catalog record shown for one candidate artwork
type CandidateMetadata struct {
	Title          string   `json:"title" yaml:"title"`
	Year           string   `json:"year" yaml:"year"`
	Medium         string   `json:"medium" yaml:"medium"`
	InkOrPigment   string   `json:"ink_or_pigment" yaml:"ink_or_pigment"`
	CatalogRef     string   `json:"catalog_ref" yaml:"catalog_ref"`
	OwnershipChain []string `json:"ownership_chain" yaml:"ownership_chain"`
	Notes          string   `json:"notes" yaml:"notes"`
}

// Credits attributes the source material for a case
type Credits struct {
	Source     string `json:"source" yaml:"source"`
	Identifier string `json:"identifier" yaml:"identifier"`
	Title      string `json:"title" yaml:"title"`
	Creator    string `json:"creator" yaml:"creator"`
	Rights     string `json:"rights" yaml:"rights"`
	LicenseURL string `json:"license_url" yaml:"license_url"`
}

// CasePublic is the player-visible content of a case
type CasePublic struct {
	CaseID string `json:"case_id" yaml:"case_id"`

	// Brief is the spoiler-free framing of why fraud is suspected
	Brief string `json:"brief" yaml:"brief"`

	StylePeriod string `json:"style_period" yaml:"style_period"`

	// Images holds the three candidate artwork references (index 0=A, 1=B, 2=C)
	Images []string `json:"images" yaml:"images"`

	// SignatureCrops holds the pre-cut macro crop per candidate
	SignatureCrops []string `json:"signature_crops" yaml:"signature_crops"`

	Metadata []CandidateMetadata `json:"metadata" yaml:"metadata"`

	LedgerSummary string `json:"ledger_summary" yaml:"ledger_summary"`

	TimerSeconds int       `json:"timer_seconds" yaml:"timer_seconds"`
	InitialIP    int       `json:"initial_ip" yaml:"initial_ip"`
	ToolCosts    ToolCosts `json:"tool_costs" yaml:"tool_costs"`

	Credits Credits `json:"credits" yaml:"credits"`
}

// CaseSolution is the private half of a case, disclosed only through gated
// tool hints or the post-guess reveal
type CaseSolution struct {
	// AnswerIndex is the authentic candidate (0, 1, or 2)
	AnswerIndex int `json:"answer_index" yaml:"answer_index"`

	FlagsSignature []string `json:"flags_signature" yaml:"flags_signature"`
	FlagsMetadata  []string `json:"flags_metadata" yaml:"flags_metadata"`
	FlagsFinancial []string `json:"flags_financial" yaml:"flags_financial"`

	Explanation string `json:"explanation" yaml:"explanation"`
}

// Case is one day's puzzle: three candidate artworks, exactly one authentic
type Case struct {
	ID       string        `json:"case_id" yaml:"case_id"`
	Public   *CasePublic   `json:"public" yaml:"public"`
	Solution *CaseSolution `json:"solution" yaml:"solution"`
}
