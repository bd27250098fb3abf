package service

import (
	"context"
	"testing"

	"github.com/kranthisuryadevara25-cpu/monyFest-sub000/internal/model"
)

func TestSplitPoints(t *testing.T) {
	tests := []struct {
		name           string
		total          int64
		settings       model.CommissionSettings
		hasParent      bool
		hasGrandparent bool
		want           PointsSplit
	}{
		{
			name:           "full chain standard shares",
			total:          100,
			settings:       model.CommissionSettings{BuyerPct: 70, ParentPct: 20, GrandparentPct: 10},
			hasParent:      true,
			hasGrandparent: true,
			want:           PointsSplit{Buyer: 70, Parent: 20, Grandparent: 10},
		},
		{
			name:     "no ancestors collapse to buyer",
			total:    100,
			settings: model.CommissionSettings{BuyerPct: 70, ParentPct: 20, GrandparentPct: 10},
			want:     PointsSplit{Buyer: 100},
		},
		{
			name:           "parent only keeps grandparent share with buyer",
			total:          100,
			settings:       model.CommissionSettings{BuyerPct: 70, ParentPct: 20, GrandparentPct: 10},
			hasParent:      true,
			want:           PointsSplit{Buyer: 80, Parent: 20},
		},
		{
			name:           "parent-heavy shares favor the referrer",
			total:          100,
			settings:       model.CommissionSettings{BuyerPct: 20, ParentPct: 70, GrandparentPct: 10},
			hasParent:      true,
			hasGrandparent: true,
			want:           PointsSplit{Buyer: 20, Parent: 70, Grandparent: 10},
		},
		{
			name:      "parent-heavy shares without grandparent collapse to buyer",
			total:     100,
			settings:  model.CommissionSettings{BuyerPct: 20, ParentPct: 70, GrandparentPct: 10},
			hasParent: true,
			want:      PointsSplit{Buyer: 30, Parent: 70},
		},
		{
			name:           "shares normalized when sum is not 100",
			total:          130,
			settings:       model.CommissionSettings{BuyerPct: 70, ParentPct: 40, GrandparentPct: 20},
			hasParent:      true,
			hasGrandparent: true,
			want:           PointsSplit{Buyer: 70, Parent: 40, Grandparent: 20},
		},
		{
			name:           "flooring remainder goes to buyer",
			total:          101,
			settings:       model.CommissionSettings{BuyerPct: 70, ParentPct: 20, GrandparentPct: 10},
			hasParent:      true,
			hasGrandparent: true,
			want:           PointsSplit{Buyer: 71, Parent: 20, Grandparent: 10},
		},
		{
			name:           "zero shares give everything to buyer",
			total:          50,
			settings:       model.CommissionSettings{},
			hasParent:      true,
			hasGrandparent: true,
			want:           PointsSplit{Buyer: 50},
		},
		{
			name:     "non-positive total allocates nothing",
			total:    0,
			settings: model.CommissionSettings{BuyerPct: 70, ParentPct: 20, GrandparentPct: 10},
			want:     PointsSplit{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitPoints(tt.total, tt.settings, tt.hasParent, tt.hasGrandparent)
			if got != tt.want {
				t.Fatalf("splitPoints() = %+v, want %+v", got, tt.want)
			}
			if tt.total > 0 && got.Buyer+got.Parent+got.Grandparent != tt.total {
				t.Fatalf("split must conserve total %d, got %+v", tt.total, got)
			}
		})
	}
}

func TestAllocatePoints_FullChain(t *testing.T) {
	repo := newStubRepo()
	gp := repo.addUser(model.User{ID: 1, Login: "grandparent"})
	parent := repo.addUser(model.User{ID: 2, Login: "parent", ReferredBy: &gp.ID})
	repo.addUser(model.User{ID: 3, Login: "buyer", ReferredBy: &parent.ID})

	svc := NewService(repo, nil, nil)

	split, err := svc.AllocatePoints(context.Background(), 3, "42", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := PointsSplit{Buyer: 70, Parent: 20, Grandparent: 10}
	if split != want {
		t.Fatalf("expected split %+v, got %+v", want, split)
	}

	if len(repo.awards) != 3 {
		t.Fatalf("expected 3 awards, got %d", len(repo.awards))
	}
	if repo.awardsSource != "42" {
		t.Fatalf("awards must reference the purchase, got source %q", repo.awardsSource)
	}
	if repo.awards[0].UserID != 3 || repo.awards[0].Points != 70 {
		t.Fatalf("unexpected buyer award: %+v", repo.awards[0])
	}
	if repo.awards[1].UserID != 2 || repo.awards[1].Points != 20 {
		t.Fatalf("unexpected parent award: %+v", repo.awards[1])
	}
	if repo.awards[2].UserID != 1 || repo.awards[2].Points != 10 {
		t.Fatalf("unexpected grandparent award: %+v", repo.awards[2])
	}
}

func TestAllocatePoints_SelfReferralTreatedAsNoParent(t *testing.T) {
	repo := newStubRepo()
	self := int64(3)
	repo.addUser(model.User{ID: 3, Login: "buyer", ReferredBy: &self})

	svc := NewService(repo, nil, nil)

	split, err := svc.AllocatePoints(context.Background(), 3, "42", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if split.Buyer != 100 || split.Parent != 0 || split.Grandparent != 0 {
		t.Fatalf("self-referral must collapse to buyer, got %+v", split)
	}
}

func TestAllocatePoints_MissingParentRecordTolerated(t *testing.T) {
	repo := newStubRepo()
	gone := int64(99)
	repo.addUser(model.User{ID: 3, Login: "buyer", ReferredBy: &gone})

	svc := NewService(repo, nil, nil)

	split, err := svc.AllocatePoints(context.Background(), 3, "42", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if split.Buyer != 100 {
		t.Fatalf("missing parent record must collapse to buyer, got %+v", split)
	}
	if len(repo.awards) != 1 {
		t.Fatalf("expected single buyer award, got %d", len(repo.awards))
	}
}

func TestAllocatePoints_NonPositiveTotalIsNoOp(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, nil, nil)

	split, err := svc.AllocatePoints(context.Background(), 3, "42", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if split != (PointsSplit{}) {
		t.Fatalf("expected empty split, got %+v", split)
	}
	if len(repo.awards) != 0 {
		t.Fatalf("expected no awards, got %d", len(repo.awards))
	}
}
