package main

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/dgryski/go-wyhash"
	"github.com/google/uuid"
	"pgregory.net/rand"
)

// adjectives is a list of common adjectives
var adjectives = []string{
	"able", "bad", "best", "better", "big", "black", "certain", "clear", "different", "early",
	"easy", "economic", "federal", "free", "full", "good", "great", "hard", "high", "human",
	"important", "international", "large", "late", "little", "local", "long", "low", "major",
	"military", "national", "new", "old", "only", "other", "political", "possible", "public",
	"real", "recent", "right", "small", "social", "special", "strong", "sure", "true", "white",
	"whole", "young",
}

// nouns is a list of common nouns
var nouns = []string{
	"angle", "ant", "apple", "arch", "arm", "army", "baby", "bag", "ball", "band", "basin", "basket", "bath", "bed", "bee", "bell",
	"berry", "bird", "blade", "board", "boat", "bone", "book", "boot", "bottle", "box", "boy", "brain", "brake", "branch", "brick", "bridge",
	"brush", "bucket", "bulb", "button", "cake", "camera", "card", "carriage", "cart", "cat", "chain", "cheese", "chess", "chin", "church", "circle",
	"clock", "cloud", "coat", "collar", "comb", "cord", "cow", "cup", "curtain", "cushion", "dog", "door", "drain", "drawer", "dress", "drop",
	"ear", "egg", "engine", "eye", "face", "farm", "feather", "finger", "fish", "flag", "floor", "fly", "foot", "fork", "fowl", "frame",
	"garden", "girl", "glove", "goat", "gun", "hair", "hammer", "hand", "hat", "head", "heart", "hook", "horn", "horse", "hospital", "house",
	"island", "jewel", "kettle", "key", "knee", "knife", "knot", "leaf", "leg", "library", "line", "lip", "lock", "map", "match", "monkey",
	"moon", "mouth", "muscle", "nail", "neck", "needle", "nerve", "net", "nose", "nut", "office", "orange", "oven", "parcel", "pen", "pencil",
	"picture", "pig", "pin", "pipe", "plane", "plate", "plough", "pocket", "pot", "potato", "prison", "pump", "rail", "rat", "receipt", "ring",
	"rod", "roof", "root", "sail", "school", "scissors", "screw", "seed", "sheep", "shelf", "ship", "shirt", "shoe", "skin", "skirt", "snake",
	"sock", "spade", "sponge", "spoon", "spring", "square", "stamp", "star", "station", "stem", "stick", "stocking", "stomach", "store", "street", "sun",
	"table", "tail", "thread", "throat", "thumb", "ticket", "toe", "tongue", "tooth", "town", "train", "tray", "tree", "trousers", "umbrella", "wall",
	"watch", "wheel", "whip", "whistle", "window", "wing", "wire", "worm",
}

// Rng is the random source for everything the generators produce. Two Rngs
// built from the same seed produce the same sequence. It is not safe for
// concurrent use; see lockedRng.
type Rng struct {
	rng *rand.Rand
}

func NewRng(s string) Rng {
	return Rng{rand.New(wyhash.Hash([]byte(s), 2467825690))}
}

// newSeed returns a seed string for runs that didn't ask for a specific one.
func newSeed() string {
	return strconv.FormatInt(time.Now().UnixNano(), 10)
}

func (r Rng) Intn(n int) int {
	return r.rng.Intn(n)
}

// Int returns an int in the closed range [min, max].
func (r Rng) Int(min, max int) int {
	return min + r.rng.Intn(max-min+1)
}

// Float returns a float in [min, max).
func (r Rng) Float(min, max float64) float64 {
	return r.rng.Float64()*(max-min) + min
}

// Duration returns a uniformly distributed duration in [min, max).
func (r Rng) Duration(min, max time.Duration) time.Duration {
	return time.Duration(r.Float(float64(min), float64(max)))
}

func (r Rng) Choice(a []string) string {
	return a[r.Intn(len(a))]
}

// BoolWithProb returns true with probability p (0..1).
func (r Rng) BoolWithProb(p float64) bool {
	return r.rng.Float64() < p
}

func (r Rng) UUID() string {
	var b [16]byte
	binary.LittleEndian.PutUint64(b[:8], r.rng.Uint64())
	binary.LittleEndian.PutUint64(b[8:], r.rng.Uint64())
	// NewRandomFromReader sets the version and variant bits for us
	u, err := uuid.NewRandomFromReader(bytes.NewReader(b[:]))
	if err != nil {
		panic(fmt.Sprintf("unable to build uuid: %s -- implementation error in rng.go", err))
	}
	return u.String()
}

// IPv4 returns a dotted-quad address that avoids the 0 and 224+ first octets.
func (r Rng) IPv4() string {
	return fmt.Sprintf("%d.%d.%d.%d", r.Int(1, 223), r.Intn(256), r.Intn(256), r.Int(1, 254))
}

func (r Rng) UserName() string {
	return fmt.Sprintf("%s%s%d", r.Choice(adjectives), r.Choice(nouns), r.Intn(100))
}

func (r Rng) Word() string {
	return r.Choice(nouns)
}

// lockedRng guards an Rng that is shared with a goroutine we don't own,
// such as a metric reader invoking observable callbacks.
type lockedRng struct {
	mut sync.Mutex
	rng Rng
}

func (l *lockedRng) Int(min, max int) int {
	l.mut.Lock()
	defer l.mut.Unlock()
	return l.rng.Int(min, max)
}
