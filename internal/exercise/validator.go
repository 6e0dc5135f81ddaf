package exercise

import (
	"fmt"
	"math"
)

// ValidateGuessNote проверяет ответ упражнения с выбором варианта
func ValidateGuessNote(selectedIndex, correctIndex int) ChoiceResult {
	if selectedIndex == correctIndex {
		return ChoiceResult{
			IsCorrect: true,
			Message:   "Correct! Well done!",
		}
	}
	return ChoiceResult{
		IsCorrect:   false,
		Message:     "Not quite right. Try again!",
		Explanation: "Listen carefully to the pitch and try to match it with the note names.",
	}
}

// ValidateIntervals проверяет последовательность нот.
// Точность считается как доля позиций с совпадением от длины большей
// последовательности.
func ValidateIntervals(userSequence, correctSequence []string) SequenceResult {
	accuracy := sequenceAccuracy(userSequence, correctSequence)
	isCorrect := len(userSequence) == len(correctSequence)
	if isCorrect {
		for i := range userSequence {
			if userSequence[i] != correctSequence[i] {
				isCorrect = false
				break
			}
		}
	}

	message := "Perfect! You got the sequence exactly right!"
	if !isCorrect {
		message = fmt.Sprintf("Close! You got %d%% of the sequence correct.", int(math.Round(accuracy)))
	}

	return SequenceResult{
		IsCorrect:       isCorrect,
		Accuracy:        accuracy,
		Message:         message,
		UserSequence:    userSequence,
		CorrectSequence: correctSequence,
	}
}

func sequenceAccuracy(userSequence, correctSequence []string) float64 {
	maxLen := len(userSequence)
	if len(correctSequence) > maxLen {
		maxLen = len(correctSequence)
	}
	if maxLen == 0 {
		return 100
	}

	minLen := len(userSequence)
	if len(correctSequence) < minLen {
		minLen = len(correctSequence)
	}

	matches := 0
	for i := 0; i < minLen; i++ {
		if userSequence[i] == correctSequence[i] {
			matches++
		}
	}

	return float64(matches) / float64(maxLen) * 100
}

// ValidateHarmonies проверяет набор нот аккорда без учёта порядка.
// Ответ верен, когда множества нот совпадают полностью.
func ValidateHarmonies(userNotes, correctNotes []string) SetResult {
	userSet := make(map[string]struct{}, len(userNotes))
	for _, n := range userNotes {
		userSet[n] = struct{}{}
	}
	correctSet := make(map[string]struct{}, len(correctNotes))
	for _, n := range correctNotes {
		correctSet[n] = struct{}{}
	}

	correctCount := 0
	for n := range correctSet {
		if _, ok := userSet[n]; ok {
			correctCount++
		}
	}

	accuracy := 0.0
	if len(correctSet) > 0 {
		accuracy = float64(correctCount) / float64(len(correctSet)) * 100
	}
	isCorrect := correctCount == len(correctSet) && len(userSet) == len(correctSet)

	message := "Excellent! You identified all the notes correctly!"
	if !isCorrect {
		// Лишние ноты и пропущенные ноты сообщаются по-разному
		if len(userSet) > len(correctSet) {
			message = fmt.Sprintf("Good effort! You got %d/%d notes, but picked %d extra.",
				correctCount, len(correctSet), len(userSet)-len(correctSet))
		} else {
			message = fmt.Sprintf("Good effort! You got %d/%d notes correct.", correctCount, len(correctSet))
		}
	}

	return SetResult{
		IsCorrect:    isCorrect,
		Accuracy:     accuracy,
		Message:      message,
		UserNotes:    userNotes,
		CorrectNotes: correctNotes,
	}
}

// ValidatePanning проверяет позицию в стереопанораме с допуском.
// Точность нормируется на полный размах панорамы.
func ValidatePanning(userAnswer, correctAnswer, tolerance float64) ValueResult {
	diff := math.Abs(userAnswer - correctAnswer)
	isCorrect := diff <= tolerance
	accuracy := math.Max(0, (1-diff/panAccuracyRange)*100)

	message := "Great! You identified the stereo position correctly!"
	if !isCorrect {
		message = fmt.Sprintf("Close! The correct position was %d%% from center.",
			int(math.Round(correctAnswer*100)))
	}

	return ValueResult{IsCorrect: isCorrect, Accuracy: accuracy, Message: message}
}

// ValidateVolumes проверяет разницу громкости в дБ с допуском
func ValidateVolumes(userAnswer, correctAnswer, tolerance float64) ValueResult {
	diff := math.Abs(userAnswer - correctAnswer)
	isCorrect := diff <= tolerance
	accuracy := math.Max(0, (1-diff/volumeAccuracyRange)*100)

	message := "Perfect! You identified the volume difference correctly!"
	if !isCorrect {
		sign := ""
		if correctAnswer > 0 {
			sign = "+"
		}
		message = fmt.Sprintf("Good try! The correct difference was %s%gdB.", sign, correctAnswer)
	}

	return ValueResult{IsCorrect: isCorrect, Accuracy: accuracy, Message: message}
}

// ValidateEqualizing проверяет частоту эквалайзера в Гц с допуском
func ValidateEqualizing(userAnswer, correctAnswer, tolerance float64) ValueResult {
	diff := math.Abs(userAnswer - correctAnswer)
	isCorrect := diff <= tolerance
	accuracy := math.Max(0, (1-diff/eqAccuracyRange)*100)

	message := "Excellent! You identified the EQ frequency correctly!"
	if !isCorrect {
		message = fmt.Sprintf("Nice attempt! The correct frequency was %gHz.", correctAnswer)
	}

	return ValueResult{IsCorrect: isCorrect, Accuracy: accuracy, Message: message}
}
