package connect

import (
	"fmt"

	"github.com/mpache/ferrite/pkg/model"
	"github.com/mpache/ferrite/pkg/standards"
)

// SizeWelds fills in the minimum fillet size for unsized welds, driven
// by the thickness of the joined plate. Sized welds are left untouched;
// weld size is a derived attribute and never subject to spatial rules.
func SizeWelds(welds []model.Weld, plates []model.Plate, std standards.Table) ([]model.Weld, []model.Correction) {
	out := append([]model.Weld(nil), welds...)
	var log []model.Correction

	plateByID := make(map[model.EntityID]model.Plate, len(plates))
	for _, p := range plates {
		plateByID[p.ID] = p
	}

	for i := range out {
		w := &out[i]
		if w.Size > 0 {
			continue
		}
		plate, ok := plateByID[w.Plate]
		if !ok {
			log = append(log, model.Correction{
				Entity: w.ID,
				Field:  "size",
				Err:    fmt.Sprintf("weld references missing plate %s", w.Plate.Short()),
			})
			continue
		}
		size := std.MinFilletWeld(plate.Thickness)
		log = append(log, model.Correction{
			Entity: w.ID,
			Field:  "size",
			Old:    "0",
			New:    fmt.Sprintf("%g", size),
		})
		w.Size = size
	}
	return out, log
}
