package entities

// Параметры классификатора содержимого
const (
	// Сколько первых страниц участвует в выборке
	ClassifierSamplePages = 3

	// Среднее число текстовых фрагментов на страницу, выше которого
	// документ считается текстовым
	TextHeavyFragmentThreshold = 20
)

// ClassificationResult результат классификации документа
type ClassificationResult struct {
	IsTextHeavy bool
	PageCount   int
}
