package db

import (
	"context"
	"testing"
)

func TestTxFromContext_Empty(t *testing.T) {
	if tx := TxFromContext(context.Background()); tx != nil {
		t.Errorf("expected nil tx, got %v", tx)
	}
}

func TestWithTx_NilRoundTrip(t *testing.T) {
	ctx := WithTx(context.Background(), nil)
	if tx := TxFromContext(ctx); tx != nil {
		t.Errorf("expected nil tx, got %v", tx)
	}
}
