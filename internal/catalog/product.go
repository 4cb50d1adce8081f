package catalog

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist upstream.
var ErrNotFound = errors.New("product not found")

// Product is a catalog entry as served by the upstream product API.
// It is read-only: the storefront never mutates or persists it.
type Product struct {
	ID                 int
	Title              string
	Description        string
	Price              decimal.Decimal
	DiscountPercentage decimal.Decimal
	Rating             decimal.Decimal
	Stock              int
	Brand              string
	Category           string
	Thumbnail          string
	Images             []string
}

// DiscountedPrice is the unit price after the percentage discount, the price
// actually charged. No rounding is applied here.
func (p Product) DiscountedPrice() decimal.Decimal {
	return discounted(p.Price, p.DiscountPercentage)
}

var hundred = decimal.NewFromInt(100)

func discounted(price, pct decimal.Decimal) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(1).Sub(pct.Div(hundred)))
}

// Page is one page of catalog results, mirroring the upstream envelope.
type Page struct {
	Products []Product
	Total    int
	Skip     int
	Limit    int
}

// decodePage parses the upstream {"products": [...], "total", "skip", "limit"}
// envelope.
func decodePage(data []byte) (Page, error) {
	var page Page
	d := jx.DecodeBytes(data)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "products":
			return d.Arr(func(d *jx.Decoder) error {
				p, err := decodeProduct(d)
				if err != nil {
					return err
				}
				page.Products = append(page.Products, p)
				return nil
			})
		case "total":
			page.Total, err = d.Int()
		case "skip":
			page.Skip, err = d.Int()
		case "limit":
			page.Limit, err = d.Int()
		default:
			return d.Skip()
		}
		return err
	}); err != nil {
		return Page{}, errors.Wrap(err, "decode page")
	}
	return page, nil
}

func decodeProduct(d *jx.Decoder) (Product, error) {
	var p Product
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			p.ID, err = d.Int()
		case "title":
			p.Title, err = d.Str()
		case "description":
			p.Description, err = d.Str()
		case "price":
			p.Price, err = decodeDecimal(d)
		case "discountPercentage":
			p.DiscountPercentage, err = decodeDecimal(d)
		case "rating":
			p.Rating, err = decodeDecimal(d)
		case "stock":
			p.Stock, err = d.Int()
		case "brand":
			p.Brand, err = d.Str()
		case "category":
			p.Category, err = d.Str()
		case "thumbnail":
			p.Thumbnail, err = d.Str()
		case "images":
			return d.Arr(func(d *jx.Decoder) error {
				s, err := d.Str()
				if err != nil {
					return err
				}
				p.Images = append(p.Images, s)
				return nil
			})
		default:
			return d.Skip()
		}
		return err
	}); err != nil {
		return Product{}, errors.Wrap(err, "decode product")
	}
	return p, nil
}

// decodeDecimal reads a JSON number without a float round trip, so upstream
// prices survive exactly.
func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	n, err := d.Num()
	if err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.NewFromString(n.String())
}
