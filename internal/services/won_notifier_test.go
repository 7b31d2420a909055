package services

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agencydesk/internal/models"
)

type fakeMailer struct {
	mu    sync.Mutex
	sent  []string
	err   error
	calls int
}

func (m *fakeMailer) SendClientAccessInvite(email, companyName, portalURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, email+"|"+companyName+"|"+portalURL)
	return nil
}

type fakeAnnouncer struct {
	mu    sync.Mutex
	deals []string
	err   error
}

func (a *fakeAnnouncer) AnnounceWon(deal models.Deal) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.deals = append(a.deals, deal.ID)
	return a.err
}

func TestWonNotifierSendsInviteAndAnnouncement(t *testing.T) {
	mailer := &fakeMailer{}
	chat := &fakeAnnouncer{}
	n := NewWonNotifier(mailer, chat, "https://portal.example.com", nil)

	email := "dono@padaria.com"
	deal := seedDeal("a", models.StageWon, "10")
	deal.Email = &email

	n.Listener().DealWon(deal)
	n.Wait()

	assert.Equal(t, []string{"dono@padaria.com|Loja a|https://portal.example.com"}, mailer.sent)
	assert.Equal(t, []string{"a"}, chat.deals)
}

func TestWonNotifierSkipsEmailWithoutAddress(t *testing.T) {
	mailer := &fakeMailer{}
	chat := &fakeAnnouncer{}
	n := NewWonNotifier(mailer, chat, "", nil)

	n.Notify(seedDeal("b", models.StageWon, "10"))
	n.Wait()

	assert.Zero(t, mailer.calls)
	assert.Equal(t, []string{"b"}, chat.deals)
}

func TestWonNotifierSwallowsFailures(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("smtp down")}
	chat := &fakeAnnouncer{err: errors.New("telegram down")}
	n := NewWonNotifier(mailer, chat, "", nil)

	email := "x@y.com"
	deal := seedDeal("c", models.StageWon, "10")
	deal.Email = &email

	require.NotPanics(t, func() {
		n.Notify(deal)
		n.Wait()
	})
	assert.Equal(t, 1, mailer.calls)
}

func TestWonNotifierWithoutChannels(t *testing.T) {
	n := NewWonNotifier(nil, nil, "", nil)
	n.Notify(seedDeal("d", models.StageWon, "10"))
	n.Wait()
}

func TestWonMessage(t *testing.T) {
	deal := withType(seedDeal("a", models.StageWon, "1500"), models.DealTypeRecurring)
	deal.Title = "Site <novo>"

	msg := wonMessage(deal)
	assert.Contains(t, msg, "Site &lt;novo&gt;")
	assert.Contains(t, msg, "R$ 1.500,00")
	assert.True(t, strings.HasSuffix(msg, "recorrente"))
}

func TestTelegramServiceWithoutTokenIsSilent(t *testing.T) {
	tg, err := NewTelegramService("", 42, nil)
	require.NoError(t, err)
	assert.NoError(t, tg.AnnounceWon(seedDeal("a", models.StageWon, "1")))

	var nilSvc *TelegramService
	assert.NoError(t, nilSvc.SendMessage(1, "hi"))
}
