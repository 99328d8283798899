package pipeline

// Example is a built-in ready-made task users can pick instead of
// writing their own description.
type Example struct {
	Key         string `json:"key"`
	Summary     string `json:"summary"`
	Description string `json:"description"`
}

var examples = []Example{
	{
		Key:         "cat",
		Summary:     "Портфолио для кота в IT",
		Description: "Создай креативное сайт-портфолио для кота, который ищет работу фронтенд-разработчиком в Яндексе. Включи анимации, интерактивные элементы и чувство юмора.",
	},
	{
		Key:         "treasure",
		Summary:     "Карта сокровищ курьеров",
		Description: "Создай интерактивную карту сокровищ с анимацией клада, анимированным компасом и эффектами при наведении на острова.",
	},
	{
		Key:         "teamlead",
		Summary:     "Убеги от тимлида",
		Description: "Создай простую игру 'Убеги от тимлида' с анимированным персонажем, препятствиями и счетчиком очков. В котором персонаж должен прыгать по нажатию пользователем и уклоняться от препядствий",
	},
	{
		Key:         "memes",
		Summary:     "Генератор мемов",
		Description: "Создай генератор мемов с движущимися элементами, с функциональной возможностью добавления текста и анимированными кнопками.",
	},
	{
		Key:         "yandexoids",
		Summary:     "Тайные знания древних яндексоидов",
		Description: "Создай сайт на котором на шутливый манер рассказывается история о том, как древние Яндексоиды прилетели на планету Земля чтобы подарить людям сервис доставки еды и лучшую поисковую систему.",
	},
	{
		Key:         "delivery",
		Summary:     "Аналитика доставки",
		Description: "Создай интерактивный дашборд для анализа статистики доставки с графиками, фильтрами и анимированными переходами.",
	},
}

// Examples lists the built-in example catalog.
func Examples() []Example {
	out := make([]Example, len(examples))
	copy(out, examples)
	return out
}

func findExample(key string) (Example, bool) {
	for _, e := range examples {
		if e.Key == key {
			return e, true
		}
	}
	return Example{}, false
}
