// Package loyalty содержит чистую логику подбора слэба лояльности.
package loyalty

import "github.com/kranthisuryadevara25-cpu/monyFest-sub000/internal/model"

// CategoryKey возвращает ключ поиска слэбов для продавца:
// industry, при его отсутствии category, иначе "default".
func CategoryKey(industry, category string) string {
	if industry != "" {
		return industry
	}
	if category != "" {
		return category
	}
	return "default"
}

// ResolvePoints подбирает слэб для суммы заказа в пайсах.
// Второе значение false означает, что слэбы для категории не настроены
// и вызывающая сторона должна использовать баллы оффера.
// Сумма ниже нижней границы всех слэбов даёт 0 баллов без ошибки.
func ResolvePoints(amount int64, slabs []model.LoyaltySlab) (int64, bool) {
	if len(slabs) == 0 {
		return 0, false
	}

	for _, s := range slabs {
		if amount < s.MinAmount {
			continue
		}
		if s.MaxAmount == nil || amount <= *s.MaxAmount {
			return s.Points, true
		}
	}

	return 0, true
}
