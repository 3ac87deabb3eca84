package export

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"invoicer/pkg/models"
)

const (
	pngWidth   = 640
	pngMargin  = 24
	lineHeight = 18
	pngScale   = 2
)

var (
	ink    = color.RGBA{15, 23, 42, 255}
	muted  = color.RGBA{100, 116, 139, 255}
	ruleC  = color.RGBA{226, 232, 240, 255}
	green  = color.RGBA{34, 197, 94, 255}
	red    = color.RGBA{239, 68, 68, 255}
	banner = color.RGBA{37, 99, 235, 255}
)

// canvas draws monospaced text rows top to bottom.
type canvas struct {
	img *image.RGBA
	y   int
}

func (c *canvas) text(x int, s string, col color.Color) {
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, c.y),
	}
	d.DrawString(s)
}

// right draws s so that it ends at x.
func (c *canvas) right(x int, s string, col color.Color) {
	c.text(x-font.MeasureString(basicfont.Face7x13, s).Ceil(), s, col)
}

func (c *canvas) center(s string, col color.Color) {
	c.text((pngWidth-font.MeasureString(basicfont.Face7x13, s).Ceil())/2, s, col)
}

func (c *canvas) hline(col color.Color) {
	draw.Draw(c.img, image.Rect(pngMargin, c.y-lineHeight/2, pngWidth-pngMargin, c.y-lineHeight/2+1), image.NewUniform(col), image.Point{}, draw.Src)
}

func (c *canvas) next() { c.y += lineHeight }

func pngHeight(doc document) int {
	lines := 14 + len(doc.Rows) + len(doc.Totals)
	if doc.Notes != "" {
		lines += 3
	}
	return lines*lineHeight + 2*pngMargin
}

// RenderPNG writes the invoice as a PNG image to w, drawn at 2x for phone screens.
func RenderPNG(w io.Writer, inv models.Invoice, business Business) error {
	const op = "RenderPNG"

	doc := newDocument(inv, business)
	height := pngHeight(doc)

	c := &canvas{img: image.NewRGBA(image.Rect(0, 0, pngWidth, height))}
	draw.Draw(c.img, c.img.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(c.img, image.Rect(0, 0, pngWidth, 6), image.NewUniform(banner), image.Point{}, draw.Src)

	c.y = pngMargin + lineHeight
	c.text(pngMargin, doc.Business.Name, ink)
	c.right(pngWidth-pngMargin, "INVOICE", muted)
	c.next()
	for _, line := range []string{doc.Business.Tagline, doc.Business.Address, doc.Business.Phone} {
		if line != "" {
			c.text(pngMargin, line, muted)
		}
		c.next()
	}

	c.text(pngMargin, "Number: "+doc.Number, ink)
	c.right(pngWidth-pngMargin, "Date: "+doc.Date, ink)
	c.next()
	c.text(pngMargin, "Status: "+StatusLabel(doc.Status), statusColor(doc.Status))
	c.next()
	c.next()

	c.text(pngMargin, "Bill to: "+doc.Customer.Name, ink)
	c.next()
	c.text(pngMargin, doc.Customer.Phone, muted)
	c.right(pngWidth-pngMargin, doc.Customer.Address, muted)
	c.next()
	c.next()

	qtyX, priceX, totalX := 380, 500, pngWidth-pngMargin
	c.text(pngMargin, "Description", muted)
	c.right(qtyX, "Qty", muted)
	c.right(priceX, "Unit Price", muted)
	c.right(totalX, "Amount", muted)
	c.next()
	c.hline(ruleC)
	for _, row := range doc.Rows {
		c.text(pngMargin, row.Description, ink)
		c.right(qtyX, row.Quantity, ink)
		c.right(priceX, row.UnitPrice, ink)
		c.right(totalX, row.Total, ink)
		c.next()
	}
	c.hline(ruleC)
	c.next()

	for _, t := range doc.Totals {
		col := muted
		if t.Grand {
			col = ink
		}
		c.right(priceX, t.Label, col)
		c.right(totalX, t.Value, col)
		c.next()
	}

	if doc.Notes != "" {
		c.next()
		c.text(pngMargin, "Notes: "+doc.Notes, muted)
		c.next()
		c.next()
	}

	c.next()
	c.center("Thank you for your business!", muted)

	if doc.Status == models.StatusPaid || doc.Status == models.StatusCancelled {
		drawStamp(c.img, StatusLabel(doc.Status), statusColor(doc.Status))
	}

	scaled := image.NewRGBA(image.Rect(0, 0, pngWidth*pngScale, height*pngScale))
	draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), c.img, c.img.Bounds(), draw.Src, nil)

	if err := png.Encode(w, scaled); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func statusColor(s models.Status) color.Color {
	switch s {
	case models.StatusPaid:
		return green
	case models.StatusCancelled:
		return red
	default:
		return muted
	}
}

// drawStamp frames the status label under the INVOICE heading.
func drawStamp(img *image.RGBA, label string, col color.Color) {
	w := font.MeasureString(basicfont.Face7x13, label).Ceil() + 24
	r := image.Rect(pngWidth-pngMargin-w, pngMargin+lineHeight+6, pngWidth-pngMargin, pngMargin+lineHeight+42)
	src := image.NewUniform(col)
	for i := 0; i < 3; i++ {
		in := r.Inset(i)
		draw.Draw(img, image.Rect(in.Min.X, in.Min.Y, in.Max.X, in.Min.Y+1), src, image.Point{}, draw.Src)
		draw.Draw(img, image.Rect(in.Min.X, in.Max.Y-1, in.Max.X, in.Max.Y), src, image.Point{}, draw.Src)
		draw.Draw(img, image.Rect(in.Min.X, in.Min.Y, in.Min.X+1, in.Max.Y), src, image.Point{}, draw.Src)
		draw.Draw(img, image.Rect(in.Max.X-1, in.Min.Y, in.Max.X, in.Max.Y), src, image.Point{}, draw.Src)
	}
	d := &font.Drawer{
		Dst:  img,
		Src:  src,
		Face: basicfont.Face7x13,
		Dot:  fixed.P(r.Min.X+12, r.Min.Y+22),
	}
	d.DrawString(label)
}
