package exercise

// Категории упражнений
const (
	CategoryGuessNote  = "guess-note"
	CategoryIntervals  = "intervals"
	CategoryHarmonies  = "harmonies"
	CategoryPanning    = "panning"
	CategoryVolumes    = "volumes"
	CategoryEqualizing = "equalizing"
)

// Уровни сложности
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// IsValidCategory проверяет, что категория входит в каталог упражнений
func IsValidCategory(category string) bool {
	switch category {
	case CategoryGuessNote, CategoryIntervals, CategoryHarmonies,
		CategoryPanning, CategoryVolumes, CategoryEqualizing:
		return true
	}
	return false
}

// IsValidDifficulty проверяет уровень сложности
func IsValidDifficulty(difficulty string) bool {
	switch difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Note описывает одну ноту с частотой для воспроизведения на клиенте
type Note struct {
	Name        string  `json:"name"`
	Frequency   float64 `json:"frequency"`
	DisplayName string  `json:"displayName"`
	IsBlack     bool    `json:"isBlack"`
}

// NoteOption - вариант ответа в упражнении с выбором
type NoteOption struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

// Sound описывает тестовый сигнал для аудио-упражнений
type Sound struct {
	Type        string  `json:"type"`
	Frequency   float64 `json:"frequency"`
	DisplayName string  `json:"displayName"`
}

// GuessNoteExercise - упражнение "угадай ноту": одна нота и четыре варианта ответа
type GuessNoteExercise struct {
	ID                 string       `json:"id"`
	Type               string       `json:"type"`
	Category           string       `json:"category"`
	Difficulty         string       `json:"difficulty"`
	Question           string       `json:"question"`
	CorrectNote        Note         `json:"correctNote"`
	Options            []NoteOption `json:"options"`
	CorrectAnswerIndex int          `json:"correctAnswerIndex"`
	Points             int          `json:"points"`
	TotalNotes         int          `json:"totalNotes"`
	DifficultyInfo     string       `json:"difficultyInfo"`
}

// IntervalsExercise - упражнение на память: последовательность нот,
// которую нужно повторить в том же порядке
type IntervalsExercise struct {
	ID             string `json:"id"`
	Type           string `json:"type"`
	Category       string `json:"category"`
	Difficulty     string `json:"difficulty"`
	Question       string `json:"question"`
	Sequence       []Note `json:"sequence"`
	NoteCount      int    `json:"noteCount"`
	Points         int    `json:"points"`
	DifficultyInfo string `json:"difficultyInfo"`
	PianoNotes     []Note `json:"pianoNotes"`
}

// HarmoniesExercise - упражнение на аккорды: набор одновременно звучащих нот
type HarmoniesExercise struct {
	ID             string `json:"id"`
	Type           string `json:"type"`
	Category       string `json:"category"`
	Difficulty     string `json:"difficulty"`
	Question       string `json:"question"`
	Chord          []Note `json:"chord"`
	NoteCount      int    `json:"noteCount"`
	Points         int    `json:"points"`
	DifficultyInfo string `json:"difficultyInfo"`
	PianoNotes     []Note `json:"pianoNotes"`
}

// PanningExercise - определение позиции звука в стереопанораме
type PanningExercise struct {
	ID                   string  `json:"id"`
	Type                 string  `json:"type"`
	Category             string  `json:"category"`
	Difficulty           string  `json:"difficulty"`
	Question             string  `json:"question"`
	Sound                Sound   `json:"sound"`
	CorrectPanValue      float64 `json:"correctPanValue"`
	CorrectPanPercentage int     `json:"correctPanPercentage"`
	PanDescription       string  `json:"panDescription"`
	Tolerance            float64 `json:"tolerance"`
	Points               int     `json:"points"`
	DifficultyInfo       string  `json:"difficultyInfo"`
}

// VolumesExercise - определение разницы громкости двух сигналов в дБ
type VolumesExercise struct {
	ID               string  `json:"id"`
	Type             string  `json:"type"`
	Category         string  `json:"category"`
	Difficulty       string  `json:"difficulty"`
	Question         string  `json:"question"`
	Note             Sound   `json:"note"`
	ReferenceGain    float64 `json:"referenceGain"`
	SecondGain       float64 `json:"secondGain"`
	VolumeDifference float64 `json:"volumeDifference"`
	Tolerance        float64 `json:"tolerance"`
	Points           int     `json:"points"`
	DifficultyInfo   string  `json:"difficultyInfo"`
}

// EqualizingExercise - определение частоты, изменённой пиковым фильтром
type EqualizingExercise struct {
	ID              string  `json:"id"`
	Type            string  `json:"type"`
	Category        string  `json:"category"`
	Difficulty      string  `json:"difficulty"`
	Question        string  `json:"question"`
	Sound           Sound   `json:"sound"`
	TargetFrequency float64 `json:"targetFrequency"`
	EqGainDb        float64 `json:"eqGainDb"`
	IsBoost         bool    `json:"isBoost"`
	QFactor         float64 `json:"qFactor"`
	Tolerance       float64 `json:"tolerance"`
	Points          int     `json:"points"`
	DifficultyInfo  string  `json:"difficultyInfo"`
}

// ChoiceResult - результат проверки упражнения с выбором варианта
type ChoiceResult struct {
	IsCorrect   bool   `json:"isCorrect"`
	Message     string `json:"message"`
	Explanation string `json:"explanation,omitempty"`
}

// SequenceResult - результат проверки последовательности нот
type SequenceResult struct {
	IsCorrect       bool     `json:"isCorrect"`
	Accuracy        float64  `json:"accuracy"`
	Message         string   `json:"message"`
	UserSequence    []string `json:"userSequence"`
	CorrectSequence []string `json:"correctSequence"`
}

// SetResult - результат проверки набора нот аккорда
type SetResult struct {
	IsCorrect    bool     `json:"isCorrect"`
	Accuracy     float64  `json:"accuracy"`
	Message      string   `json:"message"`
	UserNotes    []string `json:"userNotes"`
	CorrectNotes []string `json:"correctNotes"`
}

// ValueResult - результат проверки числового ответа с допуском
type ValueResult struct {
	IsCorrect bool    `json:"isCorrect"`
	Accuracy  float64 `json:"accuracy"`
	Message   string  `json:"message"`
}
