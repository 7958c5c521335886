// Package source loads candidate buyer universes from the external buyer
// service or from local fixture files. The engine takes one snapshot per
// project session; it never paginates or re-fetches mid-session.
package source

import (
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/buyside-cli/internal/model"
)

// Source lists candidate buyers of one kind.
type Source interface {
	ListBuyers(ctx context.Context, kind model.BuyerKind) ([]model.BuyerRecord, error)
}

// Snapshot fetches the strategic and sponsor universes concurrently and
// returns them as one flat list, strategics first.
func Snapshot(ctx context.Context, src Source) ([]model.BuyerRecord, error) {
	var strategics, sponsors []model.BuyerRecord

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		strategics, err = src.ListBuyers(ctx, model.KindStrategic)
		return err
	})
	g.Go(func() error {
		var err error
		sponsors, err = src.ListBuyers(ctx, model.KindSponsor)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "source: snapshot")
	}

	out := make([]model.BuyerRecord, 0, len(strategics)+len(sponsors))
	out = append(out, strategics...)
	out = append(out, sponsors...)
	return out, nil
}
