package exercise

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_GuessNote_OptionsContainCorrectNote(t *testing.T) {
	// Arrange
	gen := NewSeededGenerator(42)

	for _, difficulty := range []string{DifficultyEasy, DifficultyMedium, DifficultyHard} {
		t.Run(difficulty, func(t *testing.T) {
			// Act
			ex, err := gen.GuessNote(difficulty)

			// Assert
			require.NoError(t, err)
			assert.Len(t, ex.Options, 4, "Должно быть ровно 4 варианта ответа")
			require.GreaterOrEqual(t, ex.CorrectAnswerIndex, 0)
			require.Less(t, ex.CorrectAnswerIndex, len(ex.Options))
			assert.Equal(t, ex.CorrectNote.Name, ex.Options[ex.CorrectAnswerIndex].Name,
				"Правильная нота должна находиться по индексу correctAnswerIndex")

			// Все варианты должны быть уникальными
			seen := make(map[string]bool)
			for _, opt := range ex.Options {
				assert.False(t, seen[opt.Name], "Варианты не должны повторяться")
				seen[opt.Name] = true
			}
		})
	}
}

func TestGenerator_GuessNote_PointsByDifficulty(t *testing.T) {
	gen := NewSeededGenerator(1)

	testCases := []struct {
		difficulty string
		points     int
	}{
		{DifficultyEasy, 10},
		{DifficultyMedium, 20},
		{DifficultyHard, 35},
	}

	for _, tc := range testCases {
		t.Run(tc.difficulty, func(t *testing.T) {
			ex, err := gen.GuessNote(tc.difficulty)
			require.NoError(t, err)
			assert.Equal(t, tc.points, ex.Points)
		})
	}
}

func TestGenerator_GuessNote_NotePoolByDifficulty(t *testing.T) {
	gen := NewSeededGenerator(7)

	// Easy: только натуральные ноты четвёртой октавы
	for i := 0; i < 20; i++ {
		ex, err := gen.GuessNote(DifficultyEasy)
		require.NoError(t, err)
		assert.False(t, strings.Contains(ex.CorrectNote.Name, "#"),
			"На easy не должно быть диезов: %s", ex.CorrectNote.Name)
		assert.True(t, strings.HasSuffix(ex.CorrectNote.Name, "4"),
			"На easy только четвёртая октава: %s", ex.CorrectNote.Name)
	}
}

func TestGenerator_GuessNote_InvalidDifficulty(t *testing.T) {
	gen := NewSeededGenerator(1)

	_, err := gen.GuessNote("expert")

	assert.Error(t, err, "Неизвестная сложность должна возвращать ошибку")
}

func TestGenerator_Intervals_SequenceLength(t *testing.T) {
	gen := NewSeededGenerator(3)

	testCases := []struct {
		difficulty string
		count      int
		points     int
	}{
		{DifficultyEasy, 2, 15},
		{DifficultyMedium, 3, 25},
		{DifficultyHard, 5, 40},
	}

	for _, tc := range testCases {
		t.Run(tc.difficulty, func(t *testing.T) {
			ex, err := gen.Intervals(tc.difficulty)
			require.NoError(t, err)
			assert.Len(t, ex.Sequence, tc.count, "Длина последовательности должна соответствовать сложности")
			assert.Equal(t, tc.count, ex.NoteCount)
			assert.Equal(t, tc.points, ex.Points)
			assert.Len(t, ex.PianoNotes, 12, "Клавиатура должна содержать полную хроматику октавы")

			// Последовательность строится только из натуральных нот
			for _, note := range ex.Sequence {
				assert.False(t, note.IsBlack, "В последовательности не должно быть чёрных клавиш")
				assert.Greater(t, note.Frequency, 0.0, "Каждая нота должна иметь частоту")
			}
		})
	}
}

func TestGenerator_Harmonies_ChordNotesAreDistinct(t *testing.T) {
	gen := NewSeededGenerator(11)

	testCases := []struct {
		difficulty string
		count      int
	}{
		{DifficultyEasy, 2},
		{DifficultyMedium, 3},
		{DifficultyHard, 4},
	}

	for _, tc := range testCases {
		t.Run(tc.difficulty, func(t *testing.T) {
			for i := 0; i < 10; i++ {
				ex, err := gen.Harmonies(tc.difficulty)
				require.NoError(t, err)
				require.Len(t, ex.Chord, tc.count)

				seen := make(map[string]bool)
				for _, note := range ex.Chord {
					assert.False(t, seen[note.Name], "Ноты аккорда не должны повторяться")
					seen[note.Name] = true
				}
			}
		})
	}
}

func TestGenerator_Panning_ValueWithinRange(t *testing.T) {
	gen := NewSeededGenerator(5)

	testCases := []struct {
		difficulty string
		tolerance  float64
	}{
		{DifficultyEasy, 0.2},
		{DifficultyMedium, 0.15},
		{DifficultyHard, 0.1},
	}

	for _, tc := range testCases {
		t.Run(tc.difficulty, func(t *testing.T) {
			for i := 0; i < 20; i++ {
				ex, err := gen.Panning(tc.difficulty, 10)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, ex.CorrectPanValue, -1.0)
				assert.LessOrEqual(t, ex.CorrectPanValue, 1.0)
				assert.Equal(t, tc.tolerance, ex.Tolerance)
				assert.Equal(t, "sine", ex.Sound.Type)
				assert.Equal(t, 440.0, ex.Sound.Frequency)

				// Процент позиции: -1 -> 0%, 0 -> 50%, +1 -> 100%
				assert.GreaterOrEqual(t, ex.CorrectPanPercentage, 0)
				assert.LessOrEqual(t, ex.CorrectPanPercentage, 100)
			}
		})
	}
}

func TestGenerator_Panning_EasyUsesOnlyThreePositions(t *testing.T) {
	gen := NewSeededGenerator(13)

	for i := 0; i < 30; i++ {
		ex, err := gen.Panning(DifficultyEasy, 10)
		require.NoError(t, err)
		assert.Contains(t, []float64{-1, 0, 1}, ex.CorrectPanValue,
			"На easy доступны только крайние позиции и центр")
	}
}

func TestGenerator_Volumes_DeltaNeverZero(t *testing.T) {
	gen := NewSeededGenerator(17)

	for _, difficulty := range []string{DifficultyEasy, DifficultyMedium, DifficultyHard} {
		t.Run(difficulty, func(t *testing.T) {
			for i := 0; i < 20; i++ {
				ex, err := gen.Volumes(difficulty, 20)
				require.NoError(t, err)
				assert.NotZero(t, ex.VolumeDifference, "Разница громкости не может быть нулевой")
				assert.Equal(t, ex.VolumeDifference, ex.SecondGain)
				assert.Equal(t, 0.0, ex.ReferenceGain)
			}
		})
	}
}

func TestGenerator_Equalizing_Parameters(t *testing.T) {
	gen := NewSeededGenerator(19)

	for i := 0; i < 20; i++ {
		ex, err := gen.Equalizing(DifficultyHard, 40)
		require.NoError(t, err)
		assert.Contains(t, []float64{63, 125, 250, 500, 1000, 2000, 4000, 8000, 16000},
			ex.TargetFrequency, "Частота должна быть из набора для hard")
		assert.NotZero(t, ex.EqGainDb)
		assert.Equal(t, ex.EqGainDb > 0, ex.IsBoost, "isBoost должен соответствовать знаку усиления")
		assert.Equal(t, 4.0, ex.QFactor)
		assert.Equal(t, 100.0, ex.Tolerance)
		assert.Equal(t, "sawtooth", ex.Sound.Type)
	}
}

func TestGenerator_IDsAreUnique(t *testing.T) {
	gen := NewSeededGenerator(23)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		ex, err := gen.GuessNote(DifficultyEasy)
		require.NoError(t, err)
		assert.False(t, seen[ex.ID], "Идентификаторы упражнений должны быть уникальными")
		seen[ex.ID] = true
		assert.True(t, strings.HasPrefix(ex.ID, "guess-note-"),
			"Идентификатор должен начинаться с категории")
	}
}

func TestNoteFrequency_KnownNotes(t *testing.T) {
	testCases := []struct {
		note string
		freq float64
	}{
		{"A4", 440.00},
		{"C4", 261.63},
		{"C3", 130.81},
		{"B5", 987.77},
	}

	for _, tc := range testCases {
		t.Run(tc.note, func(t *testing.T) {
			freq, ok := NoteFrequency(tc.note)
			require.True(t, ok)
			assert.Equal(t, tc.freq, freq)
		})
	}
}

func TestNoteFrequency_UnknownNote(t *testing.T) {
	_, ok := NoteFrequency("H4")
	assert.False(t, ok, "Неизвестная нота не должна находиться в таблице частот")
}
