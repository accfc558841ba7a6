package detail

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys. The English text doubles as the key.
const (
	MsgNameNotFound    = "Name not found"
	MsgSymbolNotFound  = "Symbol not found"
	MsgNoInfo          = "No token information available"
	MsgReadMore        = "Read more"
	MsgHide            = "Hide"
	MsgAbout           = "About"
	MsgMarketCap       = "Market cap"
	MsgVolume24h       = "24H volume"
	MsgLow52W          = "52W low"
	MsgHigh52W         = "52W high"
	MsgContractAddress = "Contract address"
)

var translations = map[language.Tag]map[string]string{
	language.German: {
		MsgNameNotFound:    "Name nicht gefunden",
		MsgSymbolNotFound:  "Symbol nicht gefunden",
		MsgNoInfo:          "Keine Token-Informationen verfügbar",
		MsgReadMore:        "Mehr lesen",
		MsgHide:            "Ausblenden",
		MsgAbout:           "Über",
		MsgMarketCap:       "Marktkapitalisierung",
		MsgVolume24h:       "24h-Volumen",
		MsgLow52W:          "52W-Tief",
		MsgHigh52W:         "52W-Hoch",
		MsgContractAddress: "Vertragsadresse",
	},
	language.Spanish: {
		MsgNameNotFound:    "Nombre no encontrado",
		MsgSymbolNotFound:  "Símbolo no encontrado",
		MsgNoInfo:          "No hay información disponible del token",
		MsgReadMore:        "Leer más",
		MsgHide:            "Ocultar",
		MsgAbout:           "Acerca de",
		MsgMarketCap:       "Capitalización",
		MsgVolume24h:       "Volumen 24H",
		MsgLow52W:          "Mínimo 52S",
		MsgHigh52W:         "Máximo 52S",
		MsgContractAddress: "Dirección del contrato",
	},
}

func init() {
	for tag, msgs := range translations {
		for key, text := range msgs {
			_ = message.SetString(tag, key, text)
		}
	}
}

var matcher = language.NewMatcher([]language.Tag{language.English, language.German, language.Spanish})

// NewPrinter returns a printer for the closest supported locale.
func NewPrinter(locale string) *message.Printer {
	tag, _ := language.MatchStrings(matcher, locale)
	base, _ := tag.Base()
	return message.NewPrinter(language.Make(base.String()))
}
