package seedloader

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"portfolio_tracker/internal/app/port"
	"portfolio_tracker/internal/domain/entity"
	"portfolio_tracker/internal/pkg/utils"

	"github.com/google/uuid"
)

type seedTag struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Color string `json:"color" yaml:"color"`
}

type seedAddress struct {
	Name        string   `json:"name" yaml:"name"`
	Address     string   `json:"address" yaml:"address"`
	Chain       string   `json:"chain" yaml:"chain"`
	Network     string   `json:"network" yaml:"network"`
	Description string   `json:"description" yaml:"description"`
	Tags        []string `json:"tags" yaml:"tags"` // tag ids or names
}

type seedFile struct {
	Tags      []seedTag     `json:"tags" yaml:"tags"`
	Addresses []seedAddress `json:"addresses" yaml:"addresses"`
}

// SeedFileLoader implements port.SeedProvider by loading a seed file.
//
// Two formats are accepted: a structured JSON/YAML document with "tags" and
// "addresses", or a plain text file with one "<chain> <address> [name]" per
// line where blank lines and lines starting with # are ignored.
type SeedFileLoader struct {
	filePath   string
	loggerInfo func(msg string, args ...any)
	now        func() time.Time
}

// NewSeedFileLoader creates a new SeedFileLoader.
func NewSeedFileLoader(filePath string, loggerInfo func(msg string, args ...any)) port.SeedProvider {
	return &SeedFileLoader{filePath: filePath, loggerInfo: loggerInfo, now: time.Now}
}

// GetSeed reads the seed file.
func (l *SeedFileLoader) GetSeed() (entity.Seed, error) {
	var file seedFile
	var err error
	if strings.EqualFold(filepath.Ext(l.filePath), ".txt") {
		file, err = l.readText()
	} else {
		err = utils.LoadStructuredFile(l.filePath, &file)
	}
	if err != nil {
		return entity.Seed{}, fmt.Errorf("failed to load seed file %s: %w", l.filePath, err)
	}

	seed, err := buildSeed(file, l.now().UTC())
	if err != nil {
		return entity.Seed{}, fmt.Errorf("invalid seed file %s: %w", l.filePath, err)
	}
	if l.loggerInfo != nil {
		l.loggerInfo("Seed loaded successfully from file",
			"path", l.filePath,
			"tags", len(seed.Tags),
			"addresses", len(seed.Addresses))
	}
	return seed, nil
}

func (l *SeedFileLoader) readText() (seedFile, error) {
	f, err := os.Open(l.filePath)
	if err != nil {
		return seedFile{}, err
	}
	defer f.Close()

	var out seedFile
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			if l.loggerInfo != nil {
				l.loggerInfo("Skipping malformed seed line", "file", l.filePath, "line_number", lineNum, "line", line)
			}
			continue
		}
		name := strings.Join(fields[2:], " ")
		if name == "" {
			name = shortName(fields[1])
		}
		out.Addresses = append(out.Addresses, seedAddress{Chain: fields[0], Address: fields[1], Name: name})
	}
	if err := scanner.Err(); err != nil {
		return seedFile{}, fmt.Errorf("error scanning seed file: %w", err)
	}
	return out, nil
}

// shortName abbreviates an address as 0x1234…abcd.
func shortName(address string) string {
	if len(address) <= 12 {
		return address
	}
	return address[:6] + "…" + address[len(address)-4:]
}

func buildSeed(file seedFile, now time.Time) (entity.Seed, error) {
	var seed entity.Seed
	tagIDs := make(map[string]string) // id or lower-cased name -> id

	for i, t := range file.Tags {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			return entity.Seed{}, fmt.Errorf("tag %d has no name", i)
		}
		id := strings.TrimSpace(t.ID)
		if id == "" {
			id = uuid.NewString()
		}
		color := t.Color
		if color == "" {
			color = entity.TagColors[i%len(entity.TagColors)]
		}
		seed.Tags = append(seed.Tags, entity.Tag{ID: id, Name: name, Color: color, CreatedAt: now, UpdatedAt: now})
		tagIDs[id] = id
		tagIDs[strings.ToLower(name)] = id
	}

	for i, a := range file.Addresses {
		chain, ok := entity.ParseChain(a.Chain)
		if !ok {
			return entity.Seed{}, fmt.Errorf("address %d: unsupported chain %q", i, a.Chain)
		}
		address := strings.TrimSpace(a.Address)
		if address == "" {
			return entity.Seed{}, fmt.Errorf("address %d: empty address", i)
		}
		name := strings.TrimSpace(a.Name)
		if name == "" {
			name = shortName(address)
		}
		network := strings.TrimSpace(a.Network)
		if network == "" {
			network = entity.DefaultNetwork
		}

		var tags []string
		for _, ref := range a.Tags {
			id, ok := tagIDs[ref]
			if !ok {
				id, ok = tagIDs[strings.ToLower(strings.TrimSpace(ref))]
			}
			if !ok {
				return entity.Seed{}, fmt.Errorf("address %d: unknown tag %q", i, ref)
			}
			tags = append(tags, id)
		}

		// Spread creation times so list order follows file order.
		created := now.Add(time.Duration(i) * time.Millisecond)
		seed.Addresses = append(seed.Addresses, entity.Address{
			ID:          uuid.NewString(),
			Name:        name,
			Address:     address,
			Chain:       chain,
			Network:     network,
			Description: strings.TrimSpace(a.Description),
			TagIDs:      utils.UniqueStrings(tags),
			Positions:   []entity.ChainPosition{},
			CreatedAt:   created,
			UpdatedAt:   created,
		})
	}
	return seed, nil
}
