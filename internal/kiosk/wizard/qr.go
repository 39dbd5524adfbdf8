package wizard

import v1 "kioskreg/pkg/api/registrations/v1"

// QRAsset - имя файла с QR-кодом записи на менторство.
type QRAsset string

// qrAssets индексируется позицией темы в v1.Categories.
var qrAssets = [...]QRAsset{
	"1-mentoria-servicios-financieros.png",
	"2-mentoria-marketing-y-ventas.png",
	"3-mentoria-gestion-y-productividad.png",
	"4-mentoria-innovacion-y-talento.png",
}

// Число QR-кодов должно совпадать с числом тем.
var (
	_ [len(qrAssets) - v1.CategoryCount]struct{}
	_ [v1.CategoryCount - len(qrAssets)]struct{}
)

// DefaultQR показывается, если тема не выбрана или неизвестна.
var DefaultQR = qrAssets[0]

// QRFor возвращает QR-код для темы. Регистр и пробелы по краям не учитываются.
func QRFor(category string) QRAsset {
	c, ok := v1.ParseCategory(category)
	if !ok {
		return DefaultQR
	}
	i, _ := c.Index()
	return qrAssets[i]
}
