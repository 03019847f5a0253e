package constants

import "time"

// Word validation
const (
	MinWordLength = 2
	MaxWordLength = 100
)

// Definition limits
const (
	// MaxDefinitionLength is the stored cap; longer text is truncated with an ellipsis
	MaxDefinitionLength = 1000
	// MinTemplateDefinitionLength is the shortest definition the synthesizer will template
	MinTemplateDefinitionLength = 10
	// MaxWholeSentenceDefinitionTokens bounds the "sentence starts with the word" fallback
	MaxWholeSentenceDefinitionTokens = 20
)

// Learned strengths
const (
	SynonymPatternStrength  = 0.7
	AntonymPatternStrength  = 0.7
	SentenceAssociation     = 0.3
	TaughtForwardStrength   = 0.9
	TaughtBackwardStrength  = 0.8
	TaughtAnswerPairing     = 0.5
	DefaultAssociationLabel = "sentence"
	TaughtContextLabel      = "taught"
	GeneratedCategory       = "generated"
)

// Walk weights
const (
	SynonymWalkWeight     = 1.5
	AntonymWalkWeight     = 0.8
	AssociationWalkWeight = 1.0
)

// Learning cycle caps
const (
	MaxRecordsPerCycle    = 50
	SentencesPerCycle     = 5
	MaxPeersPerWord       = 10
	ExplorationSampleSize = 20
	ActivityLogCap        = 50
	PatternContextWindow  = 10
	DefaultCycleInterval  = 30
	MinCycleInterval      = 5
)

// Conversation
const (
	QAMatchThreshold  = 0.6
	QAPairLookupLimit = 200
	MinQueryTokenLen  = 4
	// ConversationIdle is how long a front end keeps an untouched conversation
	ConversationIdle = 30 * time.Minute
)

// Language codes
const (
	LanguageCodeEnglish = "en"
)
