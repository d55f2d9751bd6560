package document

import (
	"errors"
	"fmt"
	"slices"

	"github.com/linguameet/whiteboard/internal/element"
)

var (
	ErrLastPage        = errors.New("cannot delete the only page")
	ErrPageNotFound    = errors.New("page not found")
	ErrElementNotFound = errors.New("element not found")
	ErrDuplicateID     = errors.New("duplicate id")
	ErrKindChanged     = errors.New("update cannot change element kind")
	ErrInvalidColor    = errors.New("invalid color")
)

// Command is one document mutation. Apply must not modify its input: slices
// that change are copied first.
type Command interface {
	Apply(doc Document) (Document, error)
}

// Apply runs cmd against doc. On error the input document is returned as
// is, so callers can keep using the result unconditionally.
func Apply(doc Document, cmd Command) (Document, error) {
	next, err := cmd.Apply(doc)
	if err != nil {
		return doc, err
	}
	return next, nil
}

func pageName(i int) string {
	return fmt.Sprintf("Page %d", i+1)
}

// editPage runs fn on a copy of the page at index i and returns a document
// whose pages slice is also a copy.
func editPage(doc Document, i int, fn func(p Page) (Page, error)) (Document, error) {
	p, err := fn(doc.Pages[i])
	if err != nil {
		return doc, err
	}
	doc.Pages = slices.Clone(doc.Pages)
	doc.Pages[i] = p
	return doc, nil
}

func editActivePage(doc Document, fn func(p Page) (Page, error)) (Document, error) {
	i := doc.PageIndex(doc.ActivePageID)
	if i < 0 {
		return doc, ErrPageNotFound
	}
	return editPage(doc, i, fn)
}

// AddPage appends an empty page and makes it active. An empty DisplayName
// becomes "Page N", an empty Background the default.
type AddPage struct {
	ID          string
	DisplayName string
	Background  string
}

func (c AddPage) Apply(doc Document) (Document, error) {
	if c.ID == "" || doc.PageIndex(c.ID) >= 0 {
		return doc, fmt.Errorf("add page %q: %w", c.ID, ErrDuplicateID)
	}
	bg := c.Background
	if bg == "" {
		bg = DefaultBackground
	}
	if !element.ValidColor(bg) {
		return doc, fmt.Errorf("add page background %q: %w", bg, ErrInvalidColor)
	}
	name := c.DisplayName
	if name == "" {
		name = pageName(len(doc.Pages))
	}

	doc.Pages = append(slices.Clip(doc.Pages), Page{
		ID:              c.ID,
		DisplayName:     name,
		BackgroundColor: bg,
		Elements:        element.List{},
	})
	doc.ActivePageID = c.ID
	return doc, nil
}

// DeletePage removes a page unless it is the last one. Deleting the active
// page activates the first remaining page.
type DeletePage struct {
	ID string
}

func (c DeletePage) Apply(doc Document) (Document, error) {
	i := doc.PageIndex(c.ID)
	if i < 0 {
		return doc, ErrPageNotFound
	}
	if len(doc.Pages) == 1 {
		return doc, ErrLastPage
	}
	doc.Pages = slices.Delete(slices.Clone(doc.Pages), i, i+1)
	if doc.ActivePageID == c.ID {
		doc.ActivePageID = doc.Pages[0].ID
	}
	return doc, nil
}

type SwitchPage struct {
	ID string
}

func (c SwitchPage) Apply(doc Document) (Document, error) {
	if doc.PageIndex(c.ID) < 0 {
		return doc, ErrPageNotFound
	}
	doc.ActivePageID = c.ID
	return doc, nil
}

type RenamePage struct {
	ID   string
	Name string
}

func (c RenamePage) Apply(doc Document) (Document, error) {
	i := doc.PageIndex(c.ID)
	if i < 0 {
		return doc, ErrPageNotFound
	}
	if c.Name == "" {
		return doc, errors.New("page name is required")
	}
	return editPage(doc, i, func(p Page) (Page, error) {
		p.DisplayName = c.Name
		return p, nil
	})
}

type SetBackground struct {
	ID    string
	Color string
}

func (c SetBackground) Apply(doc Document) (Document, error) {
	i := doc.PageIndex(c.ID)
	if i < 0 {
		return doc, ErrPageNotFound
	}
	if !element.ValidColor(c.Color) {
		return doc, fmt.Errorf("page background %q: %w", c.Color, ErrInvalidColor)
	}
	return editPage(doc, i, func(p Page) (Page, error) {
		p.BackgroundColor = c.Color
		return p, nil
	})
}

// ClearPage empties the active page.
type ClearPage struct{}

func (ClearPage) Apply(doc Document) (Document, error) {
	return editActivePage(doc, func(p Page) (Page, error) {
		p.Elements = element.List{}
		return p, nil
	})
}

// AddElement appends a committed element to the active page.
type AddElement struct {
	Element element.Element
}

func (c AddElement) Apply(doc Document) (Document, error) {
	if c.Element != nil && element.IsEphemeral(c.Element) {
		return doc, element.ErrEphemeral
	}
	if err := element.Validate(c.Element); err != nil {
		return doc, err
	}
	return editActivePage(doc, func(p Page) (Page, error) {
		if p.ElementIndex(c.Element.ElementID()) >= 0 {
			return p, fmt.Errorf("add element %q: %w", c.Element.ElementID(), ErrDuplicateID)
		}
		p.Elements = append(slices.Clip(p.Elements), c.Element)
		return p, nil
	})
}

// UpdateElement replaces the element with the same id in place. The kind
// must not change.
type UpdateElement struct {
	Element element.Element
}

func (c UpdateElement) Apply(doc Document) (Document, error) {
	if err := element.Validate(c.Element); err != nil {
		return doc, err
	}
	return editActivePage(doc, func(p Page) (Page, error) {
		i := p.ElementIndex(c.Element.ElementID())
		if i < 0 {
			return p, ErrElementNotFound
		}
		if p.Elements[i].Kind() != c.Element.Kind() {
			return p, fmt.Errorf("%s -> %s: %w", p.Elements[i].Kind(), c.Element.Kind(), ErrKindChanged)
		}
		p.Elements = slices.Clone(p.Elements)
		p.Elements[i] = c.Element
		return p, nil
	})
}

type DeleteElement struct {
	ID string
}

func (c DeleteElement) Apply(doc Document) (Document, error) {
	return editActivePage(doc, func(p Page) (Page, error) {
		i := p.ElementIndex(c.ID)
		if i < 0 {
			return p, ErrElementNotFound
		}
		p.Elements = slices.Delete(slices.Clone(p.Elements), i, i+1)
		return p, nil
	})
}

// SetOptions replaces the drawing options.
type SetOptions struct {
	Options DrawingOptions
}

func (c SetOptions) Apply(doc Document) (Document, error) {
	if err := element.ValidateStruct("drawing options", c.Options); err != nil {
		return doc, err
	}
	doc.Options = c.Options
	return doc, nil
}
