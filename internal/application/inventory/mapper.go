package inventory

import (
	"github.com/jhoicas/medequipos-api/internal/application/dto"
	"github.com/jhoicas/medequipos-api/internal/domain/entity"
)

func toProductResponse(s *entity.StockItem) dto.ProductResponse {
	return dto.ProductResponse{
		ID:                     s.ID,
		CarpetaID:              s.LocationID,
		Nombre:                 s.Name,
		Marca:                  s.Brand,
		Modelo:                 s.Model,
		FactorConversion:       s.ConversionFactor,
		CantidadMinima:         s.MinQuantity,
		PermiteFraccionamiento: s.AllowsFractioning,
		PrecioBase:             s.BasePrice,
		Moneda:                 s.Currency,
		Version:                s.Version,
		UpdatedAt:              s.UpdatedAt,
	}
}

func toOpenBoxResponse(s *entity.StockItem) *dto.OpenBoxResponse {
	if s.OpenBox == nil {
		return nil
	}
	return &dto.OpenBoxResponse{
		FactorOriginal:    s.OpenBox.OriginalFactor,
		UnidadesRestantes: s.OpenBox.RemainingUnits,
		AbiertaEn:         s.OpenBox.OpenedAt,
	}
}

func toAlertResponse(a entity.StockAlert) dto.AlertResponse {
	return dto.AlertResponse{
		StockBajo:          a.LowStock,
		RequiereReposicion: a.RequiresReplenish,
		TotalUnidades:      a.TotalUnits,
		MinimoUnidades:     a.MinUnits,
	}
}

func toPresentationResponse(p *entity.Presentation) dto.PresentationResponse {
	return dto.PresentationResponse{
		ID:                  p.ID,
		StockItemID:         p.StockItemID,
		Nombre:              p.Name,
		FactorConversion:    p.ConversionFactor,
		PrecioVenta:         p.SalePrice,
		PuedeVenderCompleta: p.SellableAsWhole,
		EsDefault:           p.IsDefault,
	}
}

func toMovementResponse(m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:                m.ID,
		StockItemID:       m.StockItemID,
		CarpetaID:         m.LocationID,
		Tipo:              m.Type,
		Cantidad:          m.Quantity,
		TipoVenta:         m.SaleType,
		PresentacionID:    m.PresentationID,
		StockAnterior:     m.StockBefore,
		StockNuevo:        m.StockAfter,
		Motivo:            m.Reason,
		Usuario:           m.User,
		ReferenciaExterna: m.ExternalReference,
		Timestamp:         m.CreatedAt,
	}
}

func toMovementList(list []*entity.StockMovement) []dto.MovementResponse {
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, toMovementResponse(m))
	}
	return out
}
