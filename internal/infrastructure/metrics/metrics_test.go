package metrics

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

var _ usecase.Observer = (*Metrics)(nil)

func TestNewRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.HTTPRequests.WithLabelValues("GET", "/health", "200").Inc()
	m.TransactionRecorded("create", domain.TransactionTypeExpense)

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	if len(metricFamilies) == 0 {
		t.Fatalf("expected registered metrics, got none")
	}
}

func TestNewTwiceOnSameRegistryPanics(t *testing.T) {
	registry := prometheus.NewRegistry()
	New(registry)

	defer func() {
		if recover() == nil {
			t.Fatalf("expected duplicate registration to panic")
		}
	}()
	New(registry)
}

func TestObserverCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.TransactionRecorded("create", domain.TransactionTypeIncome)
	m.TransactionRecorded("create", domain.TransactionTypeIncome)
	m.TransactionRecorded("delete", domain.TransactionTypeExpense)

	if got := testutil.ToFloat64(m.TransactionsRecorded.WithLabelValues("create", "income")); got != 2 {
		t.Fatalf("expected 2 income creates, got %v", got)
	}
	if got := testutil.ToFloat64(m.TransactionsRecorded.WithLabelValues("delete", "expense")); got != 1 {
		t.Fatalf("expected 1 expense delete, got %v", got)
	}

	m.OperationFailed("create_transaction", domain.ErrInsufficientBalance)
	m.OperationFailed("create_transaction", fmt.Errorf("dial tcp: refused"))

	if got := testutil.ToFloat64(m.OperationFailures.WithLabelValues("create_transaction", "insufficient_balance")); got != 1 {
		t.Fatalf("expected 1 insufficient balance failure, got %v", got)
	}
	if got := testutil.ToFloat64(m.OperationFailures.WithLabelValues("create_transaction", "upstream")); got != 1 {
		t.Fatalf("expected unclassified error counted as upstream, got %v", got)
	}

	m.CascadeDeleted(0)
	m.CascadeDeleted(42)
	if got := testutil.ToFloat64(m.CascadeDeletions); got != 42 {
		t.Fatalf("expected 42 cascade deletions, got %v", got)
	}
}
