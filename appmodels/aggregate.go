package appmodels

import "sort"

const maxTopGenres = 10
const maxTopArtists = 10

// Aggregation is the statistical part of a profile, computed from one playlist's records.
type Aggregation struct {
	Genres  GenreAnalysis
	Artists ArtistAnalysis
	Audio   AudioAnalysis
	// every genre, ranked the same way as Genres.TopGenres
	AllGenres []GenreCount
}

type rankedCounter struct {
	order  []string
	counts map[string]int
}

func newRankedCounter() *rankedCounter {
	return &rankedCounter{counts: make(map[string]int)}
}

func (c *rankedCounter) add(key string) {
	if _, seen := c.counts[key]; !seen {
		c.order = append(c.order, key)
	}
	c.counts[key] += 1
}

func (c *rankedCounter) total() int {
	total := 0
	for _, count := range c.counts {
		total += count
	}
	return total
}

func (c *rankedCounter) values() []int {
	values := make([]int, 0, len(c.order))
	for _, key := range c.order {
		values = append(values, c.counts[key])
	}
	return values
}

// ranked returns keys by descending count, ties kept in first-seen order.
func (c *rankedCounter) ranked() []string {
	keys := make([]string, len(c.order))
	copy(keys, c.order)

	sort.SliceStable(keys, func(i, j int) bool {
		return c.counts[keys[i]] > c.counts[keys[j]]
	})

	return keys
}

// Aggregate computes the genre, artist and audio analysis of a track list. Tracks repeated
// with the same id are counted once. It only reads its inputs.
func Aggregate(tracks []Track, artistGenres map[string][]string, features map[string]AudioFeature) Aggregation {
	genres := newRankedCounter()
	artists := newRankedCounter()
	artistNames := make(map[string]string)

	var audio AudioAnalysis
	trackSeen := make(map[string]struct{})

	for _, track := range tracks {
		if _, seen := trackSeen[track.Id]; seen {
			continue
		}
		trackSeen[track.Id] = struct{}{}

		// a track counts each genre once, however many of its artists carry it
		trackGenres := make(map[string]struct{})
		trackArtists := make(map[string]struct{})

		for _, artist := range track.Artists {
			key := artist.Id
			if key == "" {
				key = artist.Name
			}

			if _, seen := trackArtists[key]; !seen && key != "" {
				trackArtists[key] = struct{}{}
				artists.add(key)

				if _, named := artistNames[key]; !named {
					artistNames[key] = artist.Name
				}
			}

			for _, genre := range artistGenres[artist.Id] {
				if genre == "" {
					continue
				}
				if _, seen := trackGenres[genre]; seen {
					continue
				}
				trackGenres[genre] = struct{}{}
				genres.add(genre)
			}
		}

		if feature, ok := features[track.Id]; ok {
			audio.AverageEnergy += feature.Energy
			audio.AverageDanceability += feature.Danceability
			audio.AverageValence += feature.Valence
			audio.AverageTempo += feature.Tempo
			audio.AverageAcousticness += feature.Acousticness
			audio.AverageInstrumentalness += feature.Instrumentalness
			audio.SampleCount++
		}
	}

	if audio.SampleCount > 0 {
		n := float64(audio.SampleCount)
		audio.AverageEnergy /= n
		audio.AverageDanceability /= n
		audio.AverageValence /= n
		audio.AverageTempo /= n
		audio.AverageAcousticness /= n
		audio.AverageInstrumentalness /= n
	}

	allGenres := genreCounts(genres)

	aggregation := Aggregation{
		Genres:    genreAnalysis(allGenres, genres.values()),
		Artists:   artistAnalysis(artists, artistNames),
		AllGenres: allGenres,
	}

	audio.Mood = MoodFor(audio, aggregation.Genres.DominantGenre)
	aggregation.Audio = audio

	return aggregation
}

func genreCounts(genres *rankedCounter) []GenreCount {
	total := genres.total()
	counts := make([]GenreCount, 0, len(genres.order))

	for _, genre := range genres.ranked() {
		count := genres.counts[genre]
		counts = append(counts, GenreCount{
			Genre:      genre,
			Count:      count,
			Percentage: float64(count) / float64(total) * 100,
		})
	}

	return counts
}

func genreAnalysis(counts []GenreCount, values []int) GenreAnalysis {
	analysis := GenreAnalysis{
		TopGenres:      counts,
		GenreDiversity: Diversity(values),
		DominantGenre:  UnknownGenre,
		TotalGenres:    len(counts),
	}

	if len(counts) > maxTopGenres {
		analysis.TopGenres = counts[:maxTopGenres]
	}

	if len(counts) > 0 {
		analysis.DominantGenre = counts[0].Genre
	}

	return analysis
}

func artistAnalysis(artists *rankedCounter, names map[string]string) ArtistAnalysis {
	topArtists := make([]ArtistCount, 0, maxTopArtists)

	for _, key := range artists.ranked() {
		if len(topArtists) == maxTopArtists {
			break
		}
		topArtists = append(topArtists, ArtistCount{Name: names[key], TrackCount: artists.counts[key]})
	}

	return ArtistAnalysis{
		UniqueArtists:   len(artists.order),
		TopArtists:      topArtists,
		ArtistDiversity: Diversity(artists.values()),
	}
}
