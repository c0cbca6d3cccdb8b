// Package pricing содержит статический прайс-лист моделей и расчет
// стоимости одного обращения к AI API. Никакого состояния, только
// таблица и арифметика.
package pricing

// ModelPrice - цены за 1 миллион токенов в USD.
type ModelPrice struct {
	InputUSD  float64
	OutputUSD float64
}

// DefaultModel используется, когда клиент запросил неизвестную модель.
const DefaultModel = "gemini-2.5-flash"

// priceTable - прайс-лист по идентификатору модели (USD за 1М токенов).
var priceTable = map[string]ModelPrice{
	"gemini-2.5-flash":                     {InputUSD: 0.3000, OutputUSD: 2.5200},
	"gemini-2.5-pro":                       {InputUSD: 1.2500, OutputUSD: 10.00},
	"gemini-3-pro-preview":                 {InputUSD: 2.0000, OutputUSD: 12.000},
	"gpt-4o":                               {InputUSD: 5.0000, OutputUSD: 20.00},
	"gpt-5.1":                              {InputUSD: 2.5000, OutputUSD: 20.00},
	"deepseek-ai/DeepSeek-V3.2-Exp":        {InputUSD: 0.2000, OutputUSD: 0.300},
	"deepseek-ai/DeepSeek-V3.2-Exp-thinking": {InputUSD: 0.2000, OutputUSD: 0.300},
}

// IsKnown сообщает, есть ли модель в прайс-листе.
func IsKnown(model string) bool {
	_, ok := priceTable[model]
	return ok
}

// Resolve возвращает идентификатор модели, который будет реально
// использован: неизвестная модель заменяется на DefaultModel.
func Resolve(model string) string {
	if IsKnown(model) {
		return model
	}
	return DefaultModel
}

// PriceFor возвращает цены для модели. Для неизвестной модели
// возвращается нулевой тариф, а не ошибка.
func PriceFor(model string) ModelPrice {
	if price, ok := priceTable[model]; ok {
		return price
	}
	return ModelPrice{}
}

// ComputeCost рассчитывает оценочную стоимость запроса на основе токенов.
func ComputeCost(model string, promptTokens, completionTokens int) float64 {
	price := PriceFor(model)
	inputCost := float64(promptTokens) * price.InputUSD / 1_000_000.0
	outputCost := float64(completionTokens) * price.OutputUSD / 1_000_000.0
	return inputCost + outputCost
}
