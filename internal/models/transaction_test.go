package models

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestAmount_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in      string
		want    Amount
		wantErr bool
	}{
		{`1500`, 1500, false},
		{`1500.75`, 1500.75, false},
		{`"2500"`, 2500, false},
		{`"99.5"`, 99.5, false},
		{`""`, 0, false},
		{`null`, 0, false},
		{`"abc"`, 0, true},
		{`true`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var a Amount
			err := json.Unmarshal([]byte(tt.in), &a)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal(%s) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && a != tt.want {
				t.Errorf("Unmarshal(%s) = %v, want %v", tt.in, a, tt.want)
			}
		})
	}
}

func TestTransaction_DecodeRecord(t *testing.T) {
	raw := `{"id":"txn_1001","userId":"user_1","date":"2024-01-05","description":"Cash at ATM",
		"amount":"700","type":"Debit","category":"Others","method":"Cash","balance":24300}`
	var txn Transaction
	if err := json.Unmarshal([]byte(raw), &txn); err != nil {
		t.Fatal(err)
	}
	if txn.Amount != 700 || txn.Type != Debit || txn.Balance == nil || *txn.Balance != 24300 {
		t.Errorf("decoded %+v", txn)
	}
	if txn.Signed() != -700 {
		t.Errorf("Signed() = %v, want -700", txn.Signed())
	}
}

func TestTransaction_Validate(t *testing.T) {
	if err := (&Transaction{ID: "a", Amount: 1}).Validate(); err != nil {
		t.Errorf("valid record: %v", err)
	}
	if err := (&Transaction{Amount: 1}).Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("missing id: got %v", err)
	}
	if err := (&Transaction{ID: "a", Amount: -1}).Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("negative amount: got %v", err)
	}
}

func TestCategoryBreakdown_JSONKeepsOrder(t *testing.T) {
	b := CategoryBreakdown{{"Travel", 9000}, {"Food", 300}}
	data, err := json.Marshal(b)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"Travel":9000,"Food":300}` {
		t.Errorf("got %s", data)
	}
	var back CategoryBreakdown
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if len(back) != 2 || back[0].Category != "Travel" || back[1].Amount != 300 {
		t.Errorf("round trip: %+v", back)
	}
	if v, ok := back.Get("Food"); !ok || v != 300 {
		t.Errorf("Get(Food) = %v, %v", v, ok)
	}
}
