package effect

import (
	"log"
	"time"

	"github.com/nightforge/lumen/internal/dmx"
	"github.com/nightforge/lumen/internal/pubsub"
)

// ValueSink is the Player's only way of getting bytes onto the wire. In
// production this is the Runtime Façade; tests can substitute a fake.
type ValueSink interface {
	SetValues(writes []dmx.FaderWrite)
}

// BakingStatus tracks where an effect's baked table stands relative to
// its authored source.
type BakingStatus int

const (
	Unbaked BakingStatus = iota
	Changed
	InProgress
	Baked
)

// CommandKind tags the Player's closed command set.
type CommandKind int

const (
	CmdPlay CommandKind = iota
	CmdStop
	CmdEffectChanged
	CmdEffectsChanged
	CmdGetPlayingEffects
	CmdStopPlayer
)

// Command is the Player's single command-channel message type. Only
// the fields relevant to Kind are populated.
type Command struct {
	Kind CommandKind

	EffectID Id // Play, Stop, EffectChanged

	// EffectsChanged
	Effects  []Effect
	Fixtures FixtureLookup
}

type bakeJob struct {
	effect   Effect
	fixtures FixtureLookup
}

type bakeResult struct {
	id    Id
	baked *BakedEffect
}

// Player holds baked effects, processes play/stop commands, and ticks
// at a fixed cadence, aggregating baked fader samples into one
// SetValues call per tick.
type Player struct {
	sink ValueSink
	tick time.Duration

	commands chan Command
	updates  *pubsub.Bus[[]Id]

	bakeRequests chan bakeJob
	bakeResults  chan bakeResult

	effects  map[Id]Effect
	fixtures FixtureLookup

	playing       map[Id]time.Duration
	playOrder     []Id
	baked         map[Id]*BakedEffect
	baking        map[Id]BakingStatus
	cursors       map[Id]map[dmx.FaderAddress]*FaderCursor
	pendingRebake map[Id]bool

	done chan struct{}
}

// DefaultTick is the Player's default fixed cadence.
const DefaultTick = 20 * time.Millisecond

// NewPlayer builds a Player that writes through sink at the given tick
// period (DefaultTick if zero).
func NewPlayer(sink ValueSink, tick time.Duration) *Player {
	if tick <= 0 {
		tick = DefaultTick
	}
	return &Player{
		sink:          sink,
		tick:          tick,
		commands:      make(chan Command, 32),
		updates:       pubsub.NewBus[[]Id](),
		bakeRequests:  make(chan bakeJob, 8),
		bakeResults:   make(chan bakeResult, 8),
		effects:       make(map[Id]Effect),
		playing:       make(map[Id]time.Duration),
		baked:         make(map[Id]*BakedEffect),
		baking:        make(map[Id]BakingStatus),
		cursors:       make(map[Id]map[dmx.FaderAddress]*FaderCursor),
		pendingRebake: make(map[Id]bool),
		done:          make(chan struct{}),
	}
}

// Send enqueues a command; the Player is the single consumer of its
// command channel, so multiple callers may send concurrently (MPSC).
func (p *Player) Send(cmd Command) {
	p.commands <- cmd
}

// Subscribe returns a live feed of the playing-effect-id set, emitted
// on every change.
func (p *Player) Subscribe(bufferSize int) *pubsub.Subscription[[]Id] {
	return p.updates.Subscribe(bufferSize)
}

// Run drives the command loop, the baker task, and the tick loop until
// CmdStopPlayer is received. Intended to be run in its own goroutine.
func (p *Player) Run() {
	go p.runBaker()

	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case cmd := <-p.commands:
			if p.handleCommand(cmd) {
				close(p.done)
				return
			}
		case res := <-p.bakeResults:
			p.handleBakeResult(res)
		case now := <-ticker.C:
			elapsed := now.Sub(lastTick)
			lastTick = now
			p.doTick(elapsed)
		}
	}
}

// runBaker is the sole consumer of bake requests; it shares no mutable
// state with the Player other than the result channel.
func (p *Player) runBaker() {
	for job := range p.bakeRequests {
		baked := Bake(job.effect, job.fixtures)
		select {
		case p.bakeResults <- bakeResult{id: job.effect.ID, baked: baked}:
		case <-p.done:
			return
		}
	}
}

func (p *Player) handleCommand(cmd Command) (stop bool) {
	switch cmd.Kind {
	case CmdPlay:
		if _, playing := p.playing[cmd.EffectID]; !playing {
			p.playing[cmd.EffectID] = 0
			p.playOrder = append(p.playOrder, cmd.EffectID)
			p.emitPlaying()
		}
	case CmdStop:
		p.removePlaying(cmd.EffectID)
		p.emitPlaying()
	case CmdEffectChanged:
		p.markChanged(cmd.EffectID)
	case CmdEffectsChanged:
		p.rebuildFromProject(cmd.Effects, cmd.Fixtures)
	case CmdGetPlayingEffects:
		p.emitPlaying()
	case CmdStopPlayer:
		close(p.bakeRequests)
		return true
	}
	return false
}

func (p *Player) markChanged(id Id) {
	switch p.baking[id] {
	case InProgress:
		p.pendingRebake[id] = true
	default:
		p.baking[id] = Changed
	}
}

func (p *Player) rebuildFromProject(effects []Effect, fixtures FixtureLookup) {
	p.effects = make(map[Id]Effect, len(effects))
	for _, e := range effects {
		p.effects[e.ID] = e
	}
	p.fixtures = fixtures

	p.playing = make(map[Id]time.Duration)
	p.playOrder = nil
	p.baked = make(map[Id]*BakedEffect)
	p.baking = make(map[Id]BakingStatus)
	p.cursors = make(map[Id]map[dmx.FaderAddress]*FaderCursor)
	p.pendingRebake = make(map[Id]bool)
	p.emitPlaying()
}

func (p *Player) removePlaying(id Id) {
	if _, ok := p.playing[id]; !ok {
		return
	}
	delete(p.playing, id)
	for i, pid := range p.playOrder {
		if pid == id {
			p.playOrder = append(p.playOrder[:i], p.playOrder[i+1:]...)
			break
		}
	}
}

func (p *Player) emitPlaying() {
	ids := make([]Id, len(p.playOrder))
	copy(ids, p.playOrder)
	p.updates.Publish(ids)
}

func (p *Player) handleBakeResult(res bakeResult) {
	p.baked[res.id] = res.baked
	p.cursors[res.id] = nil // rebuilt lazily on next tick
	if p.pendingRebake[res.id] {
		delete(p.pendingRebake, res.id)
		p.enqueueBake(res.id)
		return
	}
	p.baking[res.id] = Baked
}

func (p *Player) enqueueBake(id Id) {
	e, ok := p.effects[id]
	if !ok {
		return
	}
	p.baking[id] = InProgress
	select {
	case p.bakeRequests <- bakeJob{effect: e, fixtures: p.fixtures}:
	default:
		log.Printf("effect player: bake queue full, will retry %q next tick", id)
		p.baking[id] = Changed
	}
}

// doTick advances every playing effect by elapsed, aggregates the
// latest sample per fader across all of them (iterated in insertion
// order so same-tick collisions resolve deterministically), and issues
// at most one SetValues call.
func (p *Player) doTick(elapsed time.Duration) {
	aggregate := make(map[dmx.FaderAddress]uint8)
	var finished []Id

	for _, id := range p.playOrder {
		status := p.baking[id]
		if status == Unbaked || status == Changed {
			p.enqueueBake(id)
			continue
		}
		if status == InProgress {
			continue
		}

		baked := p.baked[id]
		if baked == nil {
			continue
		}

		if baked.MaxTime <= 0 {
			// A zero-duration effect never ticks.
			finished = append(finished, id)
			continue
		}

		t := p.playing[id] + elapsed
		if t > baked.MaxTime {
			if baked.Looping {
				t = t % baked.MaxTime
				p.resetCursors(id)
			} else {
				finished = append(finished, id)
				continue
			}
		}
		p.playing[id] = t

		cursors := p.cursorsFor(id, baked)
		for addr, cursor := range cursors {
			if v, ok := cursor.ValueAt(t); ok {
				aggregate[addr] = v
			}
		}
	}

	if len(aggregate) > 0 {
		writes := make([]dmx.FaderWrite, 0, len(aggregate))
		for addr, v := range aggregate {
			writes = append(writes, dmx.FaderWrite{Fader: addr, Value: v})
		}
		p.sink.SetValues(writes)
	}

	if len(finished) > 0 {
		for _, id := range finished {
			p.removePlaying(id)
		}
		p.emitPlaying()
	}
}

func (p *Player) cursorsFor(id Id, baked *BakedEffect) map[dmx.FaderAddress]*FaderCursor {
	cursors, ok := p.cursors[id]
	if !ok || cursors == nil {
		cursors = make(map[dmx.FaderAddress]*FaderCursor, len(baked.Faders))
		for addr, samples := range baked.Faders {
			cursors[addr] = NewFaderCursor(samples)
		}
		p.cursors[id] = cursors
	}
	return cursors
}

func (p *Player) resetCursors(id Id) {
	for _, c := range p.cursors[id] {
		c.Reset()
	}
}
