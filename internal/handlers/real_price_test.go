package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestClassifyService(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Bath & Brush", categoryBath},
		{"Tắm vệ sinh", categoryBath},
		{"Full Grooming", categoryGrooming},
		{"Cắt tỉa lông", categoryGrooming},
		{"Combo tắm + cắt tỉa", categoryCombo},
		{"Spa Combo Deluxe", categoryCombo},
	}
	for _, tt := range tests {
		got, err := classifyService(tt.name)
		if err != nil {
			t.Fatalf("classifyService(%q) returned error: %v", tt.name, err)
		}
		if got != tt.want {
			t.Fatalf("classifyService(%q) = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestClassifyServiceUnknownName(t *testing.T) {
	if _, err := classifyService("Nail clipping"); err == nil {
		t.Fatal("expected classification error for unmatched name")
	}
}

func TestWeightBucketBoundaries(t *testing.T) {
	tests := []struct {
		weight float64
		want   int
	}{
		{0, 0},
		{4.9, 0},
		{5, 1},
		{7, 1},
		{10, 1},
		{10.1, 2},
		{20, 2},
		{40, 3},
		{45, 4},
		{100, 4},
	}
	for _, tt := range tests {
		got, err := weightBucket(tt.weight)
		if err != nil {
			t.Fatalf("weightBucket(%v) returned error: %v", tt.weight, err)
		}
		if got != tt.want {
			t.Fatalf("weightBucket(%v) = %d, want %d", tt.weight, got, tt.want)
		}
	}
}

func TestWeightBucketRejectsOutOfRange(t *testing.T) {
	for _, weight := range []float64{-1, 100.5, 500} {
		if _, err := weightBucket(weight); err == nil {
			t.Fatalf("expected validation error for weight %v", weight)
		}
	}
}

func TestRealPriceForResolvesTable(t *testing.T) {
	got, err := realPriceFor("Bath & Brush", 7)
	if err != nil {
		t.Fatalf("realPriceFor returned error: %v", err)
	}
	if want := realPriceTable[categoryBath][1]; got != want {
		t.Fatalf("weight 7 bath should hit the 5-10kg bucket: got %v, want %v", got, want)
	}

	got, err = realPriceFor("Spa Combo Deluxe", 45)
	if err != nil {
		t.Fatalf("realPriceFor returned error: %v", err)
	}
	if want := realPriceTable[categoryCombo][4]; got != want {
		t.Fatalf("weight 45 should hit the >40kg bucket: got %v, want %v", got, want)
	}
}

func TestUpdateRealPriceRequestAcceptsZeroWeight(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"weight": 0, "petType": "dog"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	var req updateRealPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		t.Fatalf("weight 0 must bind, got %v", err)
	}
	if req.Weight != 0 {
		t.Fatalf("expected weight 0, got %v", req.Weight)
	}

	// Zero is in range and resolves a price like any other weight.
	price, err := realPriceFor("Bath & Brush", req.Weight)
	if err != nil {
		t.Fatalf("realPriceFor returned error: %v", err)
	}
	if price != realPriceTable[categoryBath][0] {
		t.Fatalf("expected <5kg bath price, got %v", price)
	}
}

func TestRealPriceForDefinedAcrossRange(t *testing.T) {
	for weight := 0.0; weight <= 100; weight += 12.5 {
		price, err := realPriceFor("Full Grooming", weight)
		if err != nil {
			t.Fatalf("weight %v: unexpected error %v", weight, err)
		}
		if price <= 0 {
			t.Fatalf("weight %v: price must be positive, got %v", weight, price)
		}
	}
}
