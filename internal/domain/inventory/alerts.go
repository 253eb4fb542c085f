package inventory

import (
	"sort"
	"strings"

	"github.com/jhoicas/medequipos-api/internal/domain/entity"
)

// EvaluateAlert calcula stock_bajo y requiere_reposicion para un item.
func EvaluateAlert(item *entity.StockItem) entity.StockAlert {
	total := TotalUnits(item)
	minUnits := ToUnits(item.MinQuantity, item.ConversionFactor)
	low := total <= minUnits
	return entity.StockAlert{
		StockItemID:       item.ID,
		TotalUnits:        total,
		MinUnits:          minUnits,
		LowStock:          low,
		RequiresReplenish: low && item.BoxesStock == 0,
	}
}

// RankCritical devuelve hasta limit items con stock bajo, los más urgentes primero:
// requiere reposición, menor cobertura (total/mínimo), mayor déficit y por último nombre.
func RankCritical(items []*entity.StockItem, limit int) []*entity.StockItem {
	type ranked struct {
		item  *entity.StockItem
		alert entity.StockAlert
	}
	low := make([]ranked, 0, len(items))
	for _, it := range items {
		a := EvaluateAlert(it)
		if a.LowStock {
			low = append(low, ranked{it, a})
		}
	}
	sort.SliceStable(low, func(i, j int) bool {
		a, b := low[i].alert, low[j].alert
		if a.RequiresReplenish != b.RequiresReplenish {
			return a.RequiresReplenish
		}
		// cobertura a/ma < b/mb sin división: a*mb < b*ma (mínimo 1 para evitar cero)
		ma, mb := max(a.MinUnits, 1), max(b.MinUnits, 1)
		if a.TotalUnits*mb != b.TotalUnits*ma {
			return a.TotalUnits*mb < b.TotalUnits*ma
		}
		if defA, defB := a.MinUnits-a.TotalUnits, b.MinUnits-b.TotalUnits; defA != defB {
			return defA > defB
		}
		return strings.ToLower(low[i].item.Name) < strings.ToLower(low[j].item.Name)
	})
	if limit > 0 && len(low) > limit {
		low = low[:limit]
	}
	out := make([]*entity.StockItem, len(low))
	for i, r := range low {
		out[i] = r.item
	}
	return out
}
