package services

import (
	"sync"

	"go.uber.org/zap"

	"agencydesk/internal/models"
	"agencydesk/internal/pipeline"
)

type WonAnnouncer interface {
	AnnounceWon(deal models.Deal) error
}

// WonNotifier fans a confirmed won deal out to email and chat. Sends run in
// the background so a slow SMTP server never holds up the board.
type WonNotifier struct {
	Email     EmailService
	Chat      WonAnnouncer
	PortalURL string
	Log       *zap.Logger

	wg sync.WaitGroup
}

func NewWonNotifier(email EmailService, chat WonAnnouncer, portalURL string, log *zap.Logger) *WonNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &WonNotifier{Email: email, Chat: chat, PortalURL: portalURL, Log: log}
}

// Notify returns immediately; use Wait to block until the sends finish.
func (n *WonNotifier) Notify(deal models.Deal) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.send(deal)
	}()
}

func (n *WonNotifier) send(deal models.Deal) {
	log := n.Log.With(zap.String("deal_id", deal.ID))

	if n.Email != nil && deal.HasEmail() {
		if err := n.Email.SendClientAccessInvite(*deal.Email, deal.CompanyName, n.PortalURL); err != nil {
			log.Warn("[won][email] failed", zap.Error(err))
		} else {
			log.Info("[won][email] invite sent")
		}
	}
	if n.Chat != nil {
		if err := n.Chat.AnnounceWon(deal); err != nil {
			log.Warn("[won][chat] failed", zap.Error(err))
		}
	}
}

func (n *WonNotifier) Wait() {
	n.wg.Wait()
}

// Listener adapts the notifier for pipeline.WithListener.
func (n *WonNotifier) Listener() pipeline.Listener {
	return pipeline.ListenerFuncs{OnWon: n.Notify}
}
