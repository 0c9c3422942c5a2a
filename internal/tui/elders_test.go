package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/smartcommhub/commhub/pkg/domain"
)

func testElders() []domain.Elder {
	return []domain.Elder{
		{ElderlyID: 1, Name: "Zhang Wei", Age: 78, HealthLevel: "low", Address: "Building 3, Unit 2"},
		{ElderlyID: 2, Name: "Li Na", Age: 85, HealthLevel: "high", Address: "Building 1, Unit 4"},
	}
}

func TestEldersLoadedPopulatesDirectory(t *testing.T) {
	m := newEldersModel(newTestClient(t))

	m, _ = m.Update(eldersLoadedMsg{elders: testElders()})
	if m.loading {
		t.Error("expected loading=false after eldersLoadedMsg")
	}
	if len(m.elders) != 2 {
		t.Fatalf("expected 2 elders, got %d", len(m.elders))
	}

	view := m.View()
	if !strings.Contains(view, "Zhang Wei") {
		t.Errorf("expected elder name in the directory view, got:\n%s", view)
	}
}

func TestEldersEnterLoadsDetail(t *testing.T) {
	m := newEldersModel(newTestClient(t))
	m, _ = m.Update(eldersLoadedMsg{elders: testElders()})
	m.cursor = 1

	_, cmd := m.Update(keyMsg2("enter"))
	if cmd == nil {
		t.Fatal("expected a detail load command on enter")
	}
}

func TestEldersDetailShowsRecordsAndAlerts(t *testing.T) {
	m := newEldersModel(newTestClient(t))
	m, _ = m.Update(eldersLoadedMsg{elders: testElders()})

	now := time.Now()
	m, _ = m.Update(elderDetailMsg{
		elderlyID: 2,
		health: []domain.HealthRecord{
			{RecordID: 1, ElderlyID: 2, MonitorType: "heart_rate", MonitorValue: "88", MonitorTime: now},
		},
		access: []domain.AccessRecord{
			{AccessID: 1, ElderlyID: 2, AccessType: "IN", GateLocation: "North Gate", RecordTime: now},
		},
		alerts: []domain.Alert{
			{AlertID: 5, ElderlyID: 2, MonitorType: "heart_rate", MonitorValue: 130, AckStatus: domain.AlertUnacked, MonitorTime: now},
		},
	})

	if !m.detail {
		t.Fatal("expected detail=true after elderDetailMsg")
	}
	view := m.View()
	for _, want := range []string{"Li Na", "heart_rate", "North Gate", "UNACKED"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in detail view, got:\n%s", want, view)
		}
	}
}

func TestEldersAckFiresOnUnackedAlert(t *testing.T) {
	m := newEldersModel(newTestClient(t))
	m, _ = m.Update(eldersLoadedMsg{elders: testElders()})
	m, _ = m.Update(elderDetailMsg{
		elderlyID: 1,
		alerts: []domain.Alert{
			{AlertID: 9, ElderlyID: 1, AckStatus: domain.AlertUnacked},
		},
	})

	_, cmd := m.Update(keyMsg("a"))
	if cmd == nil {
		t.Error("expected an ack command for an unacked alert")
	}
}

func TestEldersAckIgnoredWhenAllAcked(t *testing.T) {
	m := newEldersModel(newTestClient(t))
	m, _ = m.Update(eldersLoadedMsg{elders: testElders()})
	m, _ = m.Update(elderDetailMsg{
		elderlyID: 1,
		alerts: []domain.Alert{
			{AlertID: 9, ElderlyID: 1, AckStatus: domain.AlertAcked},
		},
	})

	_, cmd := m.Update(keyMsg("a"))
	if cmd != nil {
		t.Error("expected no ack command when every alert is acked")
	}
}

func TestEldersEscClosesDetail(t *testing.T) {
	m := newEldersModel(newTestClient(t))
	m, _ = m.Update(eldersLoadedMsg{elders: testElders()})
	m, _ = m.Update(elderDetailMsg{elderlyID: 1})
	if !m.detail {
		t.Fatal("expected detail=true")
	}

	m, _ = m.Update(keyMsg2("esc"))
	if m.detail {
		t.Error("expected detail=false after esc")
	}
}

func TestEldersHighRiskHighlighted(t *testing.T) {
	m := newEldersModel(newTestClient(t))
	m, _ = m.Update(eldersLoadedMsg{elders: testElders()})

	view := m.View()
	if !strings.Contains(view, "high") {
		t.Errorf("expected health level in the directory view, got:\n%s", view)
	}
}
