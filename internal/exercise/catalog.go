package exercise

// noteFrequencies - частоты равномерно темперированного строя (A4 = 440 Гц)
// для трёх октав, используемых в упражнениях
var noteFrequencies = map[string]float64{
	"C3": 130.81, "C#3": 138.59, "D3": 146.83, "D#3": 155.56, "E3": 164.81, "F3": 174.61,
	"F#3": 185.00, "G3": 196.00, "G#3": 207.65, "A3": 220.00, "A#3": 233.08, "B3": 246.94,
	"C4": 261.63, "C#4": 277.18, "D4": 293.66, "D#4": 311.13, "E4": 329.63, "F4": 349.23,
	"F#4": 369.99, "G4": 392.00, "G#4": 415.30, "A4": 440.00, "A#4": 466.16, "B4": 493.88,
	"C5": 523.25, "C#5": 554.37, "D5": 587.33, "D#5": 622.25, "E5": 659.25, "F5": 698.46,
	"F#5": 739.99, "G5": 783.99, "G#5": 830.61, "A5": 880.00, "A#5": 932.33, "B5": 987.77,
}

// NoteFrequency возвращает частоту ноты. Второе значение false для неизвестной ноты.
func NoteFrequency(name string) (float64, bool) {
	f, ok := noteFrequencies[name]
	return f, ok
}

// Пулы нот для "угадай ноту": натуральные, хроматика одной октавы, три октавы
var guessNotePools = map[string][]string{
	DifficultyEasy: {"C4", "D4", "E4", "F4", "G4", "A4", "B4"},
	DifficultyMedium: {
		"C4", "C#4", "D4", "D#4", "E4", "F4", "F#4", "G4", "G#4", "A4", "A#4", "B4",
	},
	DifficultyHard: {
		"C3", "C#3", "D3", "D#3", "E3", "F3", "F#3", "G3", "G#3", "A3", "A#3", "B3",
		"C4", "C#4", "D4", "D#4", "E4", "F4", "F#4", "G4", "G#4", "A4", "A#4", "B4",
		"C5", "C#5", "D5", "D#5", "E5", "F5", "F#5", "G5", "G#5", "A5", "A#5", "B5",
	},
}

// Последовательности и аккорды строятся только из натуральных нот четвёртой октавы
var sequenceNotes = []string{"C4", "D4", "E4", "F4", "G4", "A4", "B4"}

// Клавиатура для отображения на клиенте - полная хроматика четвёртой октавы
var pianoNotes = []string{
	"C4", "C#4", "D4", "D#4", "E4", "F4", "F#4", "G4", "G#4", "A4", "A#4", "B4",
}

// Длины последовательностей и аккордов по сложности
var (
	intervalNoteCounts = map[string]int{DifficultyEasy: 2, DifficultyMedium: 3, DifficultyHard: 5}
	harmonyNoteCounts  = map[string]int{DifficultyEasy: 2, DifficultyMedium: 3, DifficultyHard: 4}
)

// Базовые очки для упражнений, не хранящихся в каталоге БД
var (
	guessNotePoints = map[string]int{DifficultyEasy: 10, DifficultyMedium: 20, DifficultyHard: 35}
	sequencePoints  = map[string]int{DifficultyEasy: 15, DifficultyMedium: 25, DifficultyHard: 40}
)

// Позиции стереопанорамы: -1 левый край, 0 центр, +1 правый край
var panValues = map[string][]float64{
	DifficultyEasy:   {-1, 0, 1},
	DifficultyMedium: {-1, -0.5, 0, 0.5, 1},
	DifficultyHard:   panValuesFine(),
}

func panValuesFine() []float64 {
	values := make([]float64, 21)
	for i := range values {
		values[i] = float64(i-10) / 10
	}
	return values
}

// Допуски для панорамы по сложности
var panTolerances = map[string]float64{
	DifficultyEasy: 0.2, DifficultyMedium: 0.15, DifficultyHard: 0.1,
}

// Разницы громкости в дБ: чем выше сложность, тем тоньше разница
var volumeDifferences = map[string][]float64{
	DifficultyEasy:   {-12, -9, -6, -3, 3, 6, 9, 12},
	DifficultyMedium: {-8, -6, -4, -2, 2, 4, 6, 8},
	DifficultyHard:   {-4, -3, -2, -1, 1, 2, 3, 4},
}

var volumeTolerances = map[string]float64{
	DifficultyEasy: 4, DifficultyMedium: 2.5, DifficultyHard: 1.5,
}

// Целевые частоты эквалайзера в Гц
var eqFrequencies = map[string][]float64{
	DifficultyEasy:   {250, 500, 1000, 2000, 4000},
	DifficultyMedium: {125, 250, 500, 1000, 2000, 4000, 8000},
	DifficultyHard:   {63, 125, 250, 500, 1000, 2000, 4000, 8000, 16000},
}

// Усиление/ослабление пикового фильтра в дБ
var eqGains = map[string][]float64{
	DifficultyEasy:   {-12, -9, -6, 6, 9, 12},
	DifficultyMedium: {-8, -6, -4, -3, 3, 4, 6, 8},
	DifficultyHard:   {-5, -4, -3, -2, -1, 1, 2, 3, 4, 5},
}

var eqTolerances = map[string]float64{
	DifficultyEasy: 200, DifficultyMedium: 150, DifficultyHard: 100,
}

// Q-фактор пикового фильтра эквалайзера
const eqQFactor = 4.0

// ToleranceFor возвращает допуск числового ответа для категории и сложности.
// Второе значение false для категорий без числового допуска.
func ToleranceFor(category, difficulty string) (float64, bool) {
	switch category {
	case CategoryPanning:
		t, ok := panTolerances[difficulty]
		return t, ok
	case CategoryVolumes:
		t, ok := volumeTolerances[difficulty]
		return t, ok
	case CategoryEqualizing:
		t, ok := eqTolerances[difficulty]
		return t, ok
	}
	return 0, false
}

// Нормировочные диапазоны для расчёта точности числовых ответов
const (
	panAccuracyRange    = 2.0    // полный размах панорамы от -1 до +1
	volumeAccuracyRange = 20.0   // дБ
	eqAccuracyRange     = 1000.0 // Гц
)
