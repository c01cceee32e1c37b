package appmodels

import "strings"

type Mood string

const (
	MoodEnergetic   Mood = "energetic"
	MoodHappy       Mood = "happy"
	MoodChill       Mood = "chill"
	MoodMelancholic Mood = "melancholic"
	MoodMixed       Mood = "mixed"
)

const (
	energeticEnergyThreshold = 0.7
	energeticTempoThreshold  = 120.0
	happyValenceThreshold    = 0.7
	chillEnergyThreshold     = 0.4
	chillTempoThreshold      = 100.0
	sadValenceThreshold      = 0.3
)

// Keyword sets are checked in this order, the first containing match wins.
var moodGenreKeywords = []struct {
	mood     Mood
	keywords []string
}{
	{MoodEnergetic, []string{"rock", "metal", "electronic", "dance"}},
	{MoodHappy, []string{"pop", "reggaeton", "salsa", "funk"}},
	{MoodChill, []string{"ambient", "chill", "lofi", "jazz"}},
	{MoodMelancholic, []string{"blues", "sad", "emo", "indie"}},
}

func ClassifyMood(energy, valence, tempo float64) Mood {
	switch {
	case energy > energeticEnergyThreshold && tempo > energeticTempoThreshold:
		return MoodEnergetic
	case valence > happyValenceThreshold:
		return MoodHappy
	case energy < chillEnergyThreshold && tempo < chillTempoThreshold:
		return MoodChill
	case valence < sadValenceThreshold:
		return MoodMelancholic
	default:
		return MoodMixed
	}
}

func ClassifyMoodFromGenre(genre string) Mood {
	genre = strings.ToLower(genre)

	for _, set := range moodGenreKeywords {
		if containsAny(genre, set.keywords) {
			return set.mood
		}
	}

	return MoodMixed
}

// MoodFor uses the audio averages when at least one track had features, the dominant genre otherwise.
func MoodFor(audio AudioAnalysis, dominantGenre string) Mood {
	if audio.HasSamples() {
		return ClassifyMood(audio.AverageEnergy, audio.AverageValence, audio.AverageTempo)
	}

	return ClassifyMoodFromGenre(dominantGenre)
}

func containsAny(value string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(value, keyword) {
			return true
		}
	}

	return false
}
