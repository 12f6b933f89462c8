// services/rcc/rcc.go

// Package rcc is the clock service: it applies the board's clock request
// from config/rcc, publishes the resulting snapshot and serves peripheral
// clock gate controls.
//
// Topics:
//
//	config/rcc                                 in, types.ClockConfig
//	rcc/state                                  retained, types.RCCState
//	rcc/snapshot                               retained, types.ClockSnapshot
//	rcc/periph/<name>/control/<verb>           enable | disable | reset | status
//
// A peripheral claimed in the owner registry accepts enable, disable and
// reset only from the connection whose ID matches the holder.
package rcc

import (
	"context"
	"sync/atomic"
	"time"

	"clocktree-go/bus"
	"clocktree-go/clock/family"
	"clocktree-go/clock/gate"
	"clocktree-go/clock/owner"
	"clocktree-go/clock/regblock"
	"clocktree-go/clock/sequencer"
	"clocktree-go/clock/snapshot"
	"clocktree-go/clock/solver"
	"clocktree-go/errcode"
	"clocktree-go/types"
)

const holder = "rcc"

// Resources the service claims before it touches any register.
var claims = []string{"rcc", "flash"}

var (
	topicConfig   = bus.T("config", "rcc")
	topicState    = bus.T("rcc", "state")
	topicSnapshot = bus.T("rcc", "snapshot")
	topicControl  = bus.T("rcc", "periph", "+", "control", "+")
)

// Options configure a Service. Zero values take the defaults.
type Options struct {
	Open   func(family string) (*family.Family, regblock.Block, error)
	Owners *owner.Registry
	Budget sequencer.Budget
	Now    func() time.Time
}

type Service struct {
	conn *bus.Connection
	opts Options

	fam   *family.Family
	regs  regblock.Block
	seq   *sequencer.Sequencer
	gate  *gate.Dynamic
	store atomic.Pointer[snapshot.Store]
	ready bool
}

func New(conn *bus.Connection, opts Options) *Service {
	if opts.Open == nil {
		opts.Open = OpenPlatform
	}
	if opts.Owners == nil {
		opts.Owners = owner.Default
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{conn: conn, opts: opts}
}

// Snapshot returns the applied snapshot, or nil before the first
// configuration.
func (s *Service) Snapshot() *snapshot.Snapshot {
	st := s.store.Load()
	if st == nil {
		return nil
	}
	return st.Load()
}

// Start runs the service loop in the background.
func (s *Service) Start(ctx context.Context) {
	go s.Run(ctx)
}

func (s *Service) Run(ctx context.Context) {
	cfgSub := s.conn.Subscribe(topicConfig)
	ctrlSub := s.conn.Subscribe(topicControl)
	defer s.conn.Unsubscribe(cfgSub)
	defer s.conn.Unsubscribe(ctrlSub)
	defer s.release()

	s.publishState("idle", "awaiting_config", nil)

	for {
		select {
		case <-ctx.Done():
			s.publishState("stopped", "context_cancelled", nil)
			return

		case msg := <-cfgSub.Channel():
			if msg.Payload == nil {
				continue
			}
			cfg, err := decodeConfig(msg.Payload)
			if err != nil {
				s.publishState("failed", string(errcode.InvalidPayload), err)
				continue
			}
			if err := s.configure(cfg); err != nil {
				println("[rcc] configure failed:", err.Error())
				s.publishState("failed", string(errcode.Of(err)), err)
				continue
			}
			s.publishState("ready", "configured", nil)

		case msg := <-ctrlSub.Channel():
			s.control(msg)
		}
	}
}

func (s *Service) configure(cfg types.ClockConfig) error {
	if err := s.open(cfg.Family); err != nil {
		return err
	}
	gates, err := s.resolveGates(cfg.Gates)
	if err != nil {
		return err
	}
	req, err := Request(cfg, s.fam)
	if err != nil {
		return err
	}
	plan, err := solver.Solve(req)
	if err != nil {
		return err
	}
	snap, err := s.seq.Apply(&plan)
	if err != nil {
		return err
	}
	for _, id := range gates {
		s.gate.Enable(id) // resolved above, cannot fail
	}
	s.ready = true
	println("[rcc] applied", snap.String())
	s.conn.Publish(s.conn.NewMessage(topicSnapshot, ToBus(snap, s.opts.Now().UnixMilli()), true))
	return nil
}

// resolveGates checks every gate name against the family table before
// any register is touched, so a bad name cannot fail a half-applied config.
func (s *Service) resolveGates(names []string) ([]family.ID, error) {
	ids := make([]family.ID, 0, len(names))
	for _, name := range names {
		id, ok := family.ParseID(name)
		if ok {
			_, err := s.gate.Loc(id)
			ok = err == nil
		}
		if !ok {
			return nil, &errcode.E{C: errcode.UnknownPeripheral, Op: "gate", Msg: name}
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// open binds the service to a family on first use. The family cannot
// change afterwards.
func (s *Service) open(name string) error {
	if s.fam != nil {
		if name != s.fam.Name {
			return &errcode.E{C: errcode.Unsupported, Op: "open", Msg: "family change " + s.fam.Name + " -> " + name}
		}
		return nil
	}
	for i, r := range claims {
		if err := s.opts.Owners.Claim(r, holder); err != nil {
			for _, done := range claims[:i] {
				s.opts.Owners.Release(done, holder)
			}
			return err
		}
	}
	f, regs, err := s.opts.Open(name)
	if err != nil {
		s.release()
		return err
	}
	st := snapshot.NewStore(f)
	s.fam, s.regs = f, regs
	s.seq = sequencer.New(f, regs, st, s.opts.Budget)
	s.gate = gate.NewDynamic(f, regs)
	s.store.Store(st)
	return nil
}

func (s *Service) release() {
	for _, r := range claims {
		s.opts.Owners.Release(r, holder)
	}
}

func (s *Service) control(msg *bus.Message) {
	// rcc/periph/<name>/control/<verb>
	if len(msg.Topic) != 5 {
		return
	}
	if !s.ready {
		s.replyErr(msg, errcode.RCCNotReady)
		return
	}
	name, _ := msg.Topic[2].(string)
	verb, _ := msg.Topic[4].(string)
	id, ok := family.ParseID(name)
	if !ok {
		s.replyErr(msg, errcode.UnknownPeripheral)
		return
	}

	if verb != "status" {
		// A claimed peripheral only takes gate changes from its holder.
		if h, held := s.opts.Owners.Owner(id.String()); held && h != msg.Requester() {
			s.replyErr(msg, owner.ErrOwned)
			return
		}
	}

	var err error
	switch verb {
	case "enable":
		err = s.gate.Enable(id)
	case "disable":
		err = s.gate.Disable(id)
	case "reset":
		err = s.gate.Reset(id)
	case "status":
		st, err := s.status(id)
		if err != nil {
			s.replyErr(msg, err)
			return
		}
		s.replyOK(msg, st)
		return
	default:
		err = errcode.Unsupported
	}
	if err != nil {
		s.replyErr(msg, err)
		return
	}
	s.replyOK(msg, nil)
}

func (s *Service) status(id family.ID) (types.PeriphStatus, error) {
	loc, err := s.gate.Loc(id)
	if err != nil {
		return types.PeriphStatus{}, err
	}
	on, _ := s.gate.Enabled(id)
	return types.PeriphStatus{
		Name:    id.String(),
		Enabled: on,
		Bus:     loc.Bus.String(),
		ClockHz: uint32(s.Snapshot().Peripheral(loc)),
	}, nil
}

func (s *Service) publishState(level, status string, err error) {
	st := types.RCCState{Level: level, Status: status, TS: s.opts.Now().UnixMilli()}
	if err != nil {
		st.Error = err.Error()
	}
	s.conn.Publish(s.conn.NewMessage(topicState, st, true))
}

func (s *Service) replyOK(req *bus.Message, result any) {
	s.conn.Reply(req, types.OKReply{OK: true, Result: result}, false)
}

func (s *Service) replyErr(req *bus.Message, err error) {
	s.conn.Reply(req, types.ErrorReply{OK: false, Error: string(errcode.Of(err))}, false)
}
