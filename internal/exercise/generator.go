package exercise

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Generator создает упражнения со случайным содержимым.
// Потокобезопасен: генератор случайных чисел защищён мьютексом.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// NewGenerator создает генератор упражнений со случайным зерном
func NewGenerator() *Generator {
	return NewSeededGenerator(time.Now().UnixNano())
}

// NewSeededGenerator создает генератор с фиксированным зерном.
// Используется в тестах для воспроизводимости.
func NewSeededGenerator(seed int64) *Generator {
	return &Generator{
		rng: rand.New(rand.NewSource(seed)),
		now: time.Now,
	}
}

// newID формирует уникальный идентификатор упражнения
func (g *Generator) newID(category string) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:9]
	return fmt.Sprintf("%s-%d-%s", category, g.now().UnixMilli(), suffix)
}

// makeNote собирает структуру ноты с частотой и признаком чёрной клавиши
func makeNote(name string) Note {
	freq := noteFrequencies[name]
	return Note{
		Name:        name,
		Frequency:   freq,
		DisplayName: name,
		IsBlack:     strings.Contains(name, "#"),
	}
}

func makePianoNotes() []Note {
	notes := make([]Note, len(pianoNotes))
	for i, name := range pianoNotes {
		notes[i] = makeNote(name)
	}
	return notes
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// GuessNote создает упражнение "угадай ноту": правильная нота и три
// случайных неверных варианта, перемешанные между собой.
func (g *Generator) GuessNote(difficulty string) (*GuessNoteExercise, error) {
	if !IsValidDifficulty(difficulty) {
		return nil, fmt.Errorf("invalid difficulty: %s", difficulty)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	pool := guessNotePools[difficulty]
	correct := pool[g.rng.Intn(len(pool))]

	// Неверные варианты: все ноты пула кроме правильной, перемешанные
	wrong := make([]string, 0, len(pool)-1)
	for _, name := range pool {
		if name != correct {
			wrong = append(wrong, name)
		}
	}
	g.rng.Shuffle(len(wrong), func(i, j int) {
		wrong[i], wrong[j] = wrong[j], wrong[i]
	})

	options := append([]string{correct}, wrong[:3]...)
	g.rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	correctIndex := 0
	optionList := make([]NoteOption, len(options))
	for i, name := range options {
		optionList[i] = NoteOption{Name: name, DisplayName: name}
		if name == correct {
			correctIndex = i
		}
	}

	return &GuessNoteExercise{
		ID:                 g.newID(CategoryGuessNote),
		Type:               CategoryGuessNote,
		Category:           CategoryGuessNote,
		Difficulty:         difficulty,
		Question:           "Listen to the note and select the correct answer:",
		CorrectNote:        makeNote(correct),
		Options:            optionList,
		CorrectAnswerIndex: correctIndex,
		Points:             guessNotePoints[difficulty],
		TotalNotes:         1,
		DifficultyInfo:     fmt.Sprintf("%s level note identification", capitalize(difficulty)),
	}, nil
}

// Intervals создает упражнение на последовательность нот.
// Повторы нот в последовательности допустимы.
func (g *Generator) Intervals(difficulty string) (*IntervalsExercise, error) {
	if !IsValidDifficulty(difficulty) {
		return nil, fmt.Errorf("invalid difficulty: %s", difficulty)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	count := intervalNoteCounts[difficulty]
	sequence := make([]Note, count)
	for i := 0; i < count; i++ {
		sequence[i] = makeNote(sequenceNotes[g.rng.Intn(len(sequenceNotes))])
	}

	return &IntervalsExercise{
		ID:             g.newID(CategoryIntervals),
		Type:           CategoryIntervals,
		Category:       CategoryIntervals,
		Difficulty:     difficulty,
		Question:       "Listen to the sequence and replay it in the correct order:",
		Sequence:       sequence,
		NoteCount:      count,
		Points:         sequencePoints[difficulty],
		DifficultyInfo: fmt.Sprintf("%s level sequence memory", capitalize(difficulty)),
		PianoNotes:     makePianoNotes(),
	}, nil
}

// Harmonies создает упражнение на аккорд из различных нот
func (g *Generator) Harmonies(difficulty string) (*HarmoniesExercise, error) {
	if !IsValidDifficulty(difficulty) {
		return nil, fmt.Errorf("invalid difficulty: %s", difficulty)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	count := harmonyNoteCounts[difficulty]
	shuffled := append([]string(nil), sequenceNotes...)
	g.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	chord := make([]Note, count)
	for i := 0; i < count; i++ {
		chord[i] = makeNote(shuffled[i])
	}

	return &HarmoniesExercise{
		ID:             g.newID(CategoryHarmonies),
		Type:           CategoryHarmonies,
		Category:       CategoryHarmonies,
		Difficulty:     difficulty,
		Question:       "Listen to the chord and identify all the notes:",
		Chord:          chord,
		NoteCount:      count,
		Points:         sequencePoints[difficulty],
		DifficultyInfo: fmt.Sprintf("%s level chord identification", capitalize(difficulty)),
		PianoNotes:     makePianoNotes(),
	}, nil
}

// Panning создает упражнение на определение позиции в стереопанораме.
// Базовые очки передаются из каталога упражнений.
func (g *Generator) Panning(difficulty string, points int) (*PanningExercise, error) {
	if !IsValidDifficulty(difficulty) {
		return nil, fmt.Errorf("invalid difficulty: %s", difficulty)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	values := panValues[difficulty]
	pan := values[g.rng.Intn(len(values))]

	return &PanningExercise{
		ID:                   g.newID(CategoryPanning),
		Type:                 CategoryPanning,
		Category:             CategoryPanning,
		Difficulty:           difficulty,
		Question:             "Listen to the sound and identify its stereo position:",
		Sound:                Sound{Type: "sine", Frequency: 440, DisplayName: "440Hz Sine Wave"},
		CorrectPanValue:      pan,
		CorrectPanPercentage: int(math.Round((pan + 1) * 50)),
		PanDescription:       panDescription(pan),
		Tolerance:            panTolerances[difficulty],
		Points:               points,
		DifficultyInfo:       fmt.Sprintf("%s level stereo positioning", capitalize(difficulty)),
	}, nil
}

func panDescription(pan float64) string {
	switch pan {
	case -1:
		return "Left"
	case 0:
		return "Center"
	case 1:
		return "Right"
	}
	side := "Left"
	if pan > 0 {
		side = "Right"
	}
	return fmt.Sprintf("%d%% %s", int(math.Round(pan*100)), side)
}

// Volumes создает упражнение на разницу громкости двух сигналов
func (g *Generator) Volumes(difficulty string, points int) (*VolumesExercise, error) {
	if !IsValidDifficulty(difficulty) {
		return nil, fmt.Errorf("invalid difficulty: %s", difficulty)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	diffs := volumeDifferences[difficulty]
	delta := diffs[g.rng.Intn(len(diffs))]

	return &VolumesExercise{
		ID:               g.newID(CategoryVolumes),
		Type:             CategoryVolumes,
		Category:         CategoryVolumes,
		Difficulty:       difficulty,
		Question:         "Compare the two sounds and identify the volume difference:",
		Note:             Sound{Type: "sine", Frequency: 440, DisplayName: "A4"},
		ReferenceGain:    0,
		SecondGain:       delta,
		VolumeDifference: delta,
		Tolerance:        volumeTolerances[difficulty],
		Points:           points,
		DifficultyInfo:   fmt.Sprintf("%s level volume comparison", capitalize(difficulty)),
	}, nil
}

// Equalizing создает упражнение на определение частоты пикового фильтра
func (g *Generator) Equalizing(difficulty string, points int) (*EqualizingExercise, error) {
	if !IsValidDifficulty(difficulty) {
		return nil, fmt.Errorf("invalid difficulty: %s", difficulty)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	freqs := eqFrequencies[difficulty]
	gains := eqGains[difficulty]
	freq := freqs[g.rng.Intn(len(freqs))]
	gain := gains[g.rng.Intn(len(gains))]

	return &EqualizingExercise{
		ID:              g.newID(CategoryEqualizing),
		Type:            CategoryEqualizing,
		Category:        CategoryEqualizing,
		Difficulty:      difficulty,
		Question:        "Listen to the EQ change and identify the frequency and gain:",
		Sound:           Sound{Type: "sawtooth", Frequency: 220, DisplayName: "Sawtooth Wave"},
		TargetFrequency: freq,
		EqGainDb:        gain,
		IsBoost:         gain > 0,
		QFactor:         eqQFactor,
		Tolerance:       eqTolerances[difficulty],
		Points:          points,
		DifficultyInfo:  fmt.Sprintf("%s level EQ identification", capitalize(difficulty)),
	}, nil
}
