// Package cart holds the storefront's client-side shopping cart: a
// single-writer state store with derived totals and a save-after-mutation
// persistence hook.
package cart

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// Item is one cart line item. Quantity is the amount in the cart; Stock is
// the catalog ceiling it may never exceed.
type Item struct {
	ID                 int
	Title              string
	Price              decimal.Decimal
	DiscountPercentage decimal.Decimal
	Thumbnail          string
	Quantity           int
	Stock              int
}

// LineTotal is the discounted unit price times quantity, unrounded.
func (it Item) LineTotal() decimal.Decimal {
	return DiscountedPrice(it.Price, it.DiscountPercentage).
		Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// State is a snapshot of the cart. Total and ItemCount are derived from
// Items and are recomputed on every transition, never set directly.
type State struct {
	Items     []Item
	Total     decimal.Decimal
	ItemCount int
}

var hundred = decimal.NewFromInt(100)

// DiscountedPrice is price × (1 − pct/100), with no rounding. Display
// layers round for presentation only.
func DiscountedPrice(price, pct decimal.Decimal) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(1).Sub(pct.Div(hundred)))
}

// encodeItems serializes the item collection for the persistence hook.
func encodeItems(items []Item) []byte {
	var e jx.Encoder
	e.ArrStart()
	for _, it := range items {
		e.ObjStart()
		e.FieldStart("id")
		e.Int(it.ID)
		e.FieldStart("title")
		e.Str(it.Title)
		e.FieldStart("price")
		e.Num(jx.Num(it.Price.String()))
		e.FieldStart("discountPercentage")
		e.Num(jx.Num(it.DiscountPercentage.String()))
		e.FieldStart("thumbnail")
		e.Str(it.Thumbnail)
		e.FieldStart("quantity")
		e.Int(it.Quantity)
		e.FieldStart("stock")
		e.Int(it.Stock)
		e.ObjEnd()
	}
	e.ArrEnd()
	return e.Bytes()
}

// decodeItems parses a previously persisted item collection.
func decodeItems(data []byte) ([]Item, error) {
	var items []Item
	d := jx.DecodeBytes(data)
	if err := d.Arr(func(d *jx.Decoder) error {
		var it Item
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "id":
				it.ID, err = d.Int()
			case "title":
				it.Title, err = d.Str()
			case "price":
				it.Price, err = decodeDecimal(d)
			case "discountPercentage":
				it.DiscountPercentage, err = decodeDecimal(d)
			case "thumbnail":
				it.Thumbnail, err = d.Str()
			case "quantity":
				it.Quantity, err = d.Int()
			case "stock":
				it.Stock, err = d.Int()
			default:
				return d.Skip()
			}
			return err
		}); err != nil {
			return err
		}
		items = append(items, it)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "decode cart items")
	}
	return items, nil
}

func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	n, err := d.Num()
	if err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.NewFromString(n.String())
}
