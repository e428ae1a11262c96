package storage

import "context"

// Observed wraps a Store and reports every call that fails as unavailable,
// whichever caller made it
func Observed(inner Store, onUnavailable func(op string)) Store {
	return &observed{inner: inner, report: onUnavailable}
}

type observed struct {
	inner  Store
	report func(op string)
}

func (o *observed) check(op string, err error) {
	if err != nil && IsUnavailable(err) {
		o.report(op)
	}
}

func (o *observed) FindOne(ctx context.Context, collection string, p Predicate) (*Record, error) {
	rec, err := o.inner.FindOne(ctx, collection, p)
	o.check("findOne", err)
	return rec, err
}

func (o *observed) ListAll(ctx context.Context, collection string, fields ...string) ([]Record, error) {
	recs, err := o.inner.ListAll(ctx, collection, fields...)
	o.check("listAll", err)
	return recs, err
}

func (o *observed) Create(ctx context.Context, collection string, fields Fields) (*Record, error) {
	rec, err := o.inner.Create(ctx, collection, fields)
	o.check("create", err)
	return rec, err
}

func (o *observed) Update(ctx context.Context, collection, id string, fields Fields) (*Record, error) {
	rec, err := o.inner.Update(ctx, collection, id, fields)
	o.check("update", err)
	return rec, err
}
