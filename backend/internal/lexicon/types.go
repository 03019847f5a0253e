package lexicon

import "time"

// RelationKind tags a typed edge in the lexical graph
type RelationKind string

const (
	KindSynonym     RelationKind = "synonym"
	KindAntonym     RelationKind = "antonym"
	KindAssociation RelationKind = "association"
	KindDefinition  RelationKind = "definition"
)

// EdgeKinds are the kinds stored as word-to-word edges.
var EdgeKinds = []RelationKind{KindSynonym, KindAntonym, KindAssociation}

// Symmetric reports whether the kind is stored in both directions.
func (k RelationKind) Symmetric() bool {
	return k == KindSynonym || k == KindAntonym
}

// Valid reports whether k is one of the known kinds.
func (k RelationKind) Valid() bool {
	switch k {
	case KindSynonym, KindAntonym, KindAssociation, KindDefinition:
		return true
	}
	return false
}

// Relation is one directed row of the relation table
type Relation struct {
	Word        string       `json:"word"`
	RelatedWord string       `json:"related_word"`
	Kind        RelationKind `json:"type"`
	Strength    float64      `json:"strength"`
	Context     string       `json:"context,omitempty"`
	Language    string       `json:"language"`
	Verified    bool         `json:"verified"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Definition maps a word to descriptive text
type Definition struct {
	Word      string    `json:"word"`
	Text      string    `json:"text"`
	Language  string    `json:"language"`
	Verified  bool      `json:"verified"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WordStrength is a neighbour with its edge strength
type WordStrength struct {
	Word     string  `json:"word"`
	Strength float64 `json:"strength"`
}

// RelatedWord is a neighbour tagged with the kind of edge that produced it
type RelatedWord struct {
	Word     string       `json:"word"`
	Kind     RelationKind `json:"type"`
	Strength float64      `json:"strength"`
	Context  string       `json:"context,omitempty"`
}

// ContentRecord is a row of raw text waiting to be learned. IDs are
// monotonic so the scheduler can pull incrementally by cursor.
type ContentRecord struct {
	ID         int64     `json:"id"`
	Word       string    `json:"word"`
	Sentence   string    `json:"sentence"`
	Category   string    `json:"category"`
	Context    string    `json:"context,omitempty"`
	Language   string    `json:"language"`
	Frequency  int       `json:"frequency"`
	Confidence float64   `json:"confidence"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// QAPair is a previously taught question and its answer
type QAPair struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}

// RelationStats counts the contents of the store
type RelationStats struct {
	SynonymPairs     int `json:"synonym_pairs"`
	AntonymPairs     int `json:"antonym_pairs"`
	AssociationPairs int `json:"association_pairs"`
	Definitions      int `json:"definitions"`
}
