package models

import (
	"fmt"
	"slices"
)

// SizeLabels is the fixed size grading vocabulary in canonical order.
var SizeLabels = []string{
	"4", "5", "6", "7", "8", "9", "10", "11", "12", "13", "14", "16", "18", "20",
	"22-24", "26-32", "36-40", "45-50",
}

// QualityGrades is the fixed quality grading vocabulary in canonical order.
var QualityGrades = []string{"Extra", "I", "II", "III", "Industrial"}

// CertificationLabels lists the certifications a producer or receipt may carry.
var CertificationLabels = []string{
	"GlobalGAP", "GRASP", "Organic", "Biodynamic", "Conventional", "IntegratedProduction",
}

// Quantities maps grading labels to kilograms.
type Quantities map[string]int

// Sum returns the total kilograms across every label.
func (q Quantities) Sum() int {
	total := 0
	for _, kg := range q {
		total += kg
	}
	return total
}

// HasPositive reports whether at least one label carries a positive quantity.
func (q Quantities) HasPositive() bool {
	for _, kg := range q {
		if kg > 0 {
			return true
		}
	}
	return false
}

// Clone returns an independent copy; nil becomes an empty map.
func (q Quantities) Clone() Quantities {
	out := make(Quantities, len(q))
	for label, kg := range q {
		out[label] = kg
	}
	return out
}

// Check verifies that every label belongs to vocab and that no quantity is negative.
func (q Quantities) Check(field string, vocab []string) error {
	for label, kg := range q {
		if !slices.Contains(vocab, label) {
			return &ValidationError{Field: field, Reason: fmt.Sprintf("unknown label %q", label)}
		}
		if kg < 0 {
			return &ValidationError{Field: field, Reason: fmt.Sprintf("negative quantity for %q", label)}
		}
	}
	return nil
}

// BucketAmount is one label of a grading vocabulary with its kilograms.
type BucketAmount struct {
	Label string `json:"label"`
	Kg    int    `json:"kg"`
}

// Ordered lists every vocabulary label in canonical order, zeros included.
func (q Quantities) Ordered(vocab []string) []BucketAmount {
	out := make([]BucketAmount, 0, len(vocab))
	for _, label := range vocab {
		out = append(out, BucketAmount{Label: label, Kg: q[label]})
	}
	return out
}

// CheckCertifications rejects labels outside CertificationLabels.
func CheckCertifications(field string, labels []string) error {
	for _, label := range labels {
		if !slices.Contains(CertificationLabels, label) {
			return &ValidationError{Field: field, Reason: fmt.Sprintf("unknown certification %q", label)}
		}
	}
	return nil
}
