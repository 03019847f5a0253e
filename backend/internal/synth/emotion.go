package synth

import "context"

// Emotion keys the seed pools
type Emotion string

const (
	Happy   Emotion = "happy"
	Sad     Emotion = "sad"
	Neutral Emotion = "neutral"
	Curious Emotion = "curious"
)

// Emotions lists every emotion with a seed pool.
var Emotions = []Emotion{Happy, Sad, Neutral, Curious}

var emotionPools = map[Emotion][]string{
	Happy:   {"joy", "happy", "smile", "bright", "love", "sunshine", "laugh"},
	Sad:     {"sad", "rain", "lonely", "tears", "grey", "loss", "quiet"},
	Neutral: {"world", "day", "time", "people", "idea", "place", "thing"},
	Curious: {"why", "wonder", "question", "discover", "explore", "mystery", "learn"},
}

// EmotionPool returns the seed words for e; unknown emotions get the
// neutral pool.
func EmotionPool(e Emotion) []string {
	pool, ok := emotionPools[e]
	if !ok {
		pool = emotionPools[Neutral]
	}
	return append([]string(nil), pool...)
}

// GenerateEmotionalSentence seeds a walk from the emotion's word pool. Seeds
// are tried in random order; each gets a relation walk and then a frequency
// walk.
func (s *Synthesizer) GenerateEmotionalSentence(ctx context.Context, emotion Emotion, minLen, maxLen int) (out string) {
	defer s.recover("emotion", string(emotion), &out)

	pool := EmotionPool(emotion)
	for _, seed := range s.pick(pool, len(pool)) {
		if sentence := s.GenerateSentenceWithRelations(ctx, seed, minLen, maxLen); sentence != "" {
			return sentence
		}
		if sentence := s.GenerateFrequencyWalk(ctx, seed, minLen, maxLen); sentence != "" {
			return sentence
		}
	}
	return ""
}

