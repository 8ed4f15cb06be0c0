package chunker

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xhad/resumerag/internal/models"
)

type ChunkerConfig struct {
	MaxChunkSize       int // token budget per chunk
	Overlap            int // token budget carried between adjacent chunks; zero disables overlap
	RespectBoundaries  bool
	PreserveFormatting bool
}

// Chunker splits resume text into section-aware, offset-tagged chunks.
type Chunker struct {
	config  ChunkerConfig
	counter TokenCounter
}

func NewWithConfig(config ChunkerConfig) *Chunker {
	if config.MaxChunkSize == 0 {
		config.MaxChunkSize = 200
	}
	if config.Overlap < 0 {
		config.Overlap = 0
	}
	if config.Overlap >= config.MaxChunkSize {
		config.Overlap = config.MaxChunkSize / 4
	}

	return &Chunker{
		config:  config,
		counter: newTokenCounter(),
	}
}

// Release drops the BPE encoding so a disposed session holds no
// tokenizer state. The chunker still works afterwards, degraded to
// word counting.
func (c *Chunker) Release() {
	c.counter = wordCounter{}
}

const maxHeaderLines = 5

type sectionPattern struct {
	typ     models.SectionType
	pattern *regexp.Regexp
}

// Ordered: the first matching pattern wins for a heading line.
var sectionPatterns = []sectionPattern{
	{models.SectionSummary, regexp.MustCompile(`(?i)^\s*((professional|career)\s+)?(summary|objective|profile|about\s+me)\s*:?\s*$`)},
	{models.SectionExperience, regexp.MustCompile(`(?i)^\s*((work|professional|employment|relevant)\s+)?(experience|history)\s*:?\s*$`)},
	{models.SectionEducation, regexp.MustCompile(`(?i)^\s*(education(al\s+background)?|academics)\s*:?\s*$`)},
	{models.SectionSkills, regexp.MustCompile(`(?i)^\s*((technical|core|key)\s+)?(skills|competencies|technologies)\s*:?\s*$`)},
	{models.SectionProjects, regexp.MustCompile(`(?i)^\s*((personal|selected|key|notable)\s+)?projects\s*:?\s*$`)},
	{models.SectionCertifications, regexp.MustCompile(`(?i)^\s*(certifications?|licenses?(\s+(and|&)\s+certifications?)?)\s*:?\s*$`)},
	{models.SectionAwards, regexp.MustCompile(`(?i)^\s*(awards?|honors?|achievements?)(\s+(and|&)\s+(awards?|honors?|achievements?))?\s*:?\s*$`)},
}

func matchSection(line string) (models.SectionType, bool) {
	for _, sp := range sectionPatterns {
		if sp.pattern.MatchString(line) {
			return sp.typ, true
		}
	}
	return "", false
}

// span is a byte range into the original text.
type span struct {
	text  string
	start int
	end   int
}

func splitLines(text string) []span {
	var lines []span
	start := 0
	for i := 0; i <= len(text); i++ {
		if i == len(text) || text[i] == '\n' {
			lines = append(lines, span{text: text[start:i], start: start, end: i})
			start = i + 1
		}
	}
	return lines
}

// Chunk partitions text into document chunks. Every emitted chunk has
// non-empty trimmed content and offsets that index into text unchanged.
func (c *Chunker) Chunk(text string) []models.DocumentChunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	lines := splitLines(text)
	var chunks []models.DocumentChunk

	// The first up-to-five non-empty lines before any recognized
	// heading form the HEADER chunk.
	next := 0
	var header []span
	for next < len(lines) && len(header) < maxHeaderLines {
		line := lines[next]
		if strings.TrimSpace(line.text) == "" {
			next++
			continue
		}
		if _, ok := matchSection(line.text); ok {
			break
		}
		header = append(header, line)
		next++
	}
	if len(header) > 0 {
		start := header[0].start
		end := header[len(header)-1].end
		c.appendChunk(&chunks, text, models.SectionHeader, "", start, end)
	}

	// Scan the remaining lines against the ordered heading patterns.
	// A match flushes the running section; unmatched leading content
	// becomes OTHER.
	curType := models.SectionOther
	curTitle := ""
	var curLines []span

	flush := func() {
		c.emitSection(&chunks, text, curType, curTitle, curLines)
		curLines = nil
	}

	for ; next < len(lines); next++ {
		line := lines[next]
		if typ, ok := matchSection(line.text); ok {
			flush()
			curType = typ
			curTitle = strings.TrimSpace(line.text)
			continue
		}
		curLines = append(curLines, line)
	}
	flush()

	return chunks
}

// emitSection turns one section's lines into chunks: a single chunk when
// the section fits the token budget, a packed sliding window otherwise.
func (c *Chunker) emitSection(out *[]models.DocumentChunk, original string, typ models.SectionType, title string, lines []span) {
	for len(lines) > 0 && strings.TrimSpace(lines[0].text) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1].text) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return
	}

	start := lines[0].start
	end := lines[len(lines)-1].end
	content, start, end := trimRange(original, start, end)
	if content == "" {
		return
	}

	if c.counter.Count(content) <= c.config.MaxChunkSize {
		c.appendChunk(out, original, typ, title, start, end)
		return
	}

	if c.config.RespectBoundaries {
		c.packSentences(out, original, typ, title, start, end)
	} else {
		c.packWords(out, original, typ, title, start, end)
	}
}

// Sentences end at ., ! or ? and also at line breaks, so bullet lines
// without terminal punctuation still split cleanly.
var sentencePattern = regexp.MustCompile(`[^.!?\n]+[.!?]*`)

type unit struct {
	start  int // relative to the packed region
	end    int
	tokens int
}

// packSentences greedily accumulates sentences up to the chunk budget,
// carrying the previous sentence forward as overlap between chunks.
func (c *Chunker) packSentences(out *[]models.DocumentChunk, original string, typ models.SectionType, title string, regionStart, regionEnd int) {
	raw := original[regionStart:regionEnd]

	var units []unit
	for _, ix := range sentencePattern.FindAllStringIndex(raw, -1) {
		s := raw[ix[0]:ix[1]]
		if strings.TrimSpace(s) == "" {
			continue
		}
		units = append(units, unit{start: ix[0], end: ix[1], tokens: c.counter.Count(s)})
	}
	c.packUnits(out, original, typ, title, regionStart, units, c.overlapUnits)
}

// packWords is the window split used when sentence boundaries are not
// respected: units are single words.
func (c *Chunker) packWords(out *[]models.DocumentChunk, original string, typ models.SectionType, title string, regionStart, regionEnd int) {
	raw := original[regionStart:regionEnd]

	var units []unit
	for _, ix := range wordPattern.FindAllStringIndex(raw, -1) {
		units = append(units, unit{start: ix[0], end: ix[1], tokens: c.counter.Count(raw[ix[0]:ix[1]])})
	}
	c.packUnits(out, original, typ, title, regionStart, units, c.overlapUnits)
}

// overlapUnits decides how many trailing units of the flushed window are
// carried into the next chunk. For sentence packing this is the single
// previous sentence; for word packing it is enough words to cover the
// overlap token budget.
func (c *Chunker) overlapUnits(units []unit) int {
	if c.config.Overlap <= 0 || len(units) == 0 {
		return 0
	}
	carried := 0
	tokens := 0
	for i := len(units) - 1; i >= 0; i-- {
		if tokens+units[i].tokens > c.config.Overlap && carried > 0 {
			break
		}
		carried++
		tokens += units[i].tokens
	}
	return carried
}

func (c *Chunker) packUnits(out *[]models.DocumentChunk, original string, typ models.SectionType, title string, regionStart int, units []unit, overlap func([]unit) int) {
	if len(units) == 0 {
		return
	}

	var window []unit
	tokens := 0
	flush := func() {
		if len(window) == 0 {
			return
		}
		start := regionStart + window[0].start
		end := regionStart + window[len(window)-1].end
		c.appendChunk(out, original, typ, title, start, end)
	}

	for _, u := range units {
		if tokens > 0 && tokens+u.tokens > c.config.MaxChunkSize {
			flush()
			carry := overlap(window)
			window = append([]unit(nil), window[len(window)-carry:]...)
			tokens = 0
			for _, w := range window {
				tokens += w.tokens
			}
			// Drop the carry when it cannot fit alongside the next unit,
			// otherwise the window would never advance.
			if tokens+u.tokens > c.config.MaxChunkSize {
				window = nil
				tokens = 0
			}
		}
		window = append(window, u)
		tokens += u.tokens
	}
	flush()
}

// appendChunk materializes one chunk, deriving its metadata. Chunks with
// empty trimmed content or inverted offsets are never emitted.
func (c *Chunker) appendChunk(out *[]models.DocumentChunk, original string, typ models.SectionType, title string, start, end int) {
	content, start, end := trimRange(original, start, end)
	if content == "" || end <= start {
		return
	}
	if !c.config.PreserveFormatting {
		content = strings.Join(strings.Fields(content), " ")
	}

	idx := len(*out)
	*out = append(*out, models.DocumentChunk{
		ID:      fmt.Sprintf("chunk_%d", idx+1),
		Index:   idx,
		Content: content,
		Metadata: models.ChunkMetadata{
			SectionType:            typ,
			SectionTitle:           title,
			StartIndex:             start,
			EndIndex:               end,
			BulletPoint:            hasBullet(content),
			HasQuantifiableMetrics: hasQuantifiableMetrics(content),
			Keywords:               extractKeywords(content),
		},
	})
}

func trimRange(text string, start, end int) (string, int, int) {
	for start < end && isSpace(text[start]) {
		start++
	}
	for end > start && isSpace(text[end-1]) {
		end--
	}
	return text[start:end], start, end
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
