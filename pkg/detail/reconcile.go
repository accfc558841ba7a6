package detail

import (
	"math"
	"strings"

	"golang.org/x/text/message"

	"tokenview/pkg/models"
)

// Dash is drawn for market stats without data.
const Dash = "-"

// Stat is one rendered market statistic.
type Stat struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// DisplayModel is everything the view draws from the merged data sources.
type DisplayModel struct {
	Address              string     `json:"address"`
	Name                 string     `json:"name"`
	Symbol               string     `json:"symbol"`
	NameFound            bool       `json:"name_found"`
	SymbolFound          bool       `json:"symbol_found"`
	Description          string     `json:"description"`
	HasDescription       bool       `json:"has_description"`
	DescriptionTruncated bool       `json:"description_truncated"`
	ToggleLabel          string     `json:"toggle_label,omitempty"`
	Stats                []Stat     `json:"stats"`
	Resources            []Resource `json:"resources"`
	UserAdded            bool       `json:"user_added"`
}

// CanShare reports whether the share control is drawn.
func (d DisplayModel) CanShare() bool {
	return d.NameFound && d.SymbolFound
}

// Input is one reconciliation request.
type Input struct {
	Identity  models.Identity
	Remote    models.RemoteDetail
	UserAdded bool
	// DescriptionExpanded is the current Read more / Hide toggle state.
	DescriptionExpanded bool
}

// Reconciler merges identity, remote and user-added data into a DisplayModel.
type Reconciler struct {
	printer        *message.Printer
	formatCurrency func(float64) string
}

// NewReconciler localizes placeholders for locale and formats stats with
// formatCurrency.
func NewReconciler(locale string, formatCurrency func(float64) string) *Reconciler {
	return &Reconciler{
		printer:        NewPrinter(locale),
		formatCurrency: formatCurrency,
	}
}

// T translates a message key.
func (r *Reconciler) T(key string) string {
	return r.printer.Sprintf(key)
}

func (r *Reconciler) Reconcile(in Input) DisplayModel {
	dm := DisplayModel{
		Address:   in.Identity.Address,
		UserAdded: in.UserAdded,
		Resources: ResourceLinks(in.Identity.Address, in.Remote),
	}

	switch {
	case deref(in.Remote.Name) != "":
		dm.Name, dm.NameFound = deref(in.Remote.Name), true
	case in.Identity.Name != "":
		dm.Name, dm.NameFound = in.Identity.Name, true
	default:
		dm.Name = r.T(MsgNameNotFound)
	}

	switch {
	case remoteSymbol(in.Remote) != "":
		dm.Symbol, dm.SymbolFound = remoteSymbol(in.Remote), true
	case in.Identity.Symbol != "":
		dm.Symbol, dm.SymbolFound = in.Identity.Symbol, true
	default:
		dm.Symbol = r.T(MsgSymbolNotFound)
	}

	desc := Description{Text: deref(in.Remote.Description), expanded: in.DescriptionExpanded}
	if desc.Text == "" {
		dm.Description = r.T(MsgNoInfo)
	} else {
		dm.HasDescription = true
		dm.Description = desc.Visible()
		dm.DescriptionTruncated = desc.Truncated()
		if label := desc.ToggleLabel(); label != "" {
			dm.ToggleLabel = r.T(label)
		}
	}

	dm.Stats = []Stat{
		{Label: r.T(MsgMarketCap), Value: r.stat(in.Remote.MarketCap)},
		{Label: r.T(MsgVolume24h), Value: r.stat(in.Remote.Volume24h)},
		{Label: r.T(MsgLow52W), Value: r.stat(in.Remote.PriceLow52W)},
		{Label: r.T(MsgHigh52W), Value: r.stat(in.Remote.PriceHigh52W)},
	}
	return dm
}

func (r *Reconciler) stat(v *float64) string {
	if v == nil || *v == 0 || math.IsNaN(*v) {
		return Dash
	}
	return r.formatCurrency(*v)
}

func remoteSymbol(remote models.RemoteDetail) string {
	if len(remote.Tokens) == 0 {
		return ""
	}
	return strings.ToUpper(strings.TrimSpace(remote.Tokens[0].Symbol))
}
