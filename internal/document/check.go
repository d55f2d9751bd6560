package document

import (
	"errors"
	"fmt"

	"github.com/linguameet/whiteboard/internal/element"
)

// Check reports every structural problem in doc: no pages, a dangling
// active page, duplicate ids, ephemeral or invalid elements. Documents
// built through Apply always pass; loaded ones may not.
func Check(doc Document) error {
	var errs []error
	if len(doc.Pages) == 0 {
		errs = append(errs, errors.New("document has no pages"))
	}
	if doc.PageIndex(doc.ActivePageID) < 0 {
		errs = append(errs, fmt.Errorf("active page %q: %w", doc.ActivePageID, ErrPageNotFound))
	}

	pageIDs := make(map[string]bool, len(doc.Pages))
	for _, p := range doc.Pages {
		if pageIDs[p.ID] {
			errs = append(errs, fmt.Errorf("page %q: %w", p.ID, ErrDuplicateID))
		}
		pageIDs[p.ID] = true
		if !element.ValidColor(p.BackgroundColor) {
			errs = append(errs, fmt.Errorf("page %q background %q: %w", p.ID, p.BackgroundColor, ErrInvalidColor))
		}

		elementIDs := make(map[string]bool, len(p.Elements))
		for _, el := range p.Elements {
			if el == nil {
				errs = append(errs, fmt.Errorf("page %q: nil element", p.ID))
				continue
			}
			if element.IsEphemeral(el) {
				errs = append(errs, fmt.Errorf("page %q: %w", p.ID, element.ErrEphemeral))
				continue
			}
			if elementIDs[el.ElementID()] {
				errs = append(errs, fmt.Errorf("page %q element %q: %w", p.ID, el.ElementID(), ErrDuplicateID))
			}
			elementIDs[el.ElementID()] = true
			if err := element.Validate(el); err != nil {
				errs = append(errs, fmt.Errorf("page %q: %w", p.ID, err))
			}
		}
	}
	return errors.Join(errs...)
}
