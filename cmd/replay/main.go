package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/mickeyshaughnessy/TexasDoT/internal/persistence/snapshot"
	"github.com/mickeyshaughnessy/TexasDoT/internal/sim/agency"
)

func main() {
	var (
		snapPath = flag.String("snapshot", "", "path to .snap.zst")
		daysDir  = flag.String("days", "", "days dir containing days-*.jsonl.zst (optional)")
		fromDay  = flag.Uint64("from_day", 0, "start verifying from day (inclusive, optional)")
		toDay    = flag.Uint64("to_day", 0, "stop at day (inclusive, optional)")
	)
	flag.Parse()

	if *snapPath == "" {
		fmt.Fprintln(os.Stderr, "missing -snapshot")
		os.Exit(2)
	}

	snap, err := snapshot.ReadSnapshot(*snapPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read snapshot:", err)
		os.Exit(1)
	}

	fmt.Printf("snapshot v%d agency=%s day=%d seed=%d fy=%d assets=%d contractors=%d projects=%d events=%d\n",
		snap.Header.Version, snap.Header.AgencyID, snap.Header.Day, snap.Seed, snap.FiscalYear,
		len(snap.Assets), len(snap.Contractors), len(snap.Projects), len(snap.Events))

	if *daysDir == "" {
		return
	}

	eng, err := agency.FromSnapshot(agency.Config{}, snap)
	if err != nil {
		fmt.Fprintln(os.Stderr, "import snapshot:", err)
		os.Exit(1)
	}

	startDay := eng.CurrentDay()
	verifyFrom := *fromDay
	if verifyFrom == 0 {
		verifyFrom = startDay
	}

	files, err := listDayFiles(*daysDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "list day logs:", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "no day log files found in", *daysDir)
		os.Exit(1)
	}

	var checked uint64
	for _, path := range files {
		if err := replayFile(eng, path, startDay, verifyFrom, *toDay, &checked); err != nil {
			fmt.Fprintln(os.Stderr, "replay:", err)
			os.Exit(1)
		}
		if *toDay != 0 && eng.CurrentDay() > *toDay {
			break
		}
	}
	fmt.Printf("replay ok: checked=%d days (from snapshot day=%d)\n", checked, snap.Header.Day)
}

func listDayFiles(dir string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ents))
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, "days-") && strings.HasSuffix(name, ".jsonl.zst") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, filepath.Join(dir, name))
	}
	return out, nil
}

func replayFile(eng *agency.Engine, path string, startDay, verifyFrom, toDay uint64, checked *uint64) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)

	for sc.Scan() {
		line := sc.Bytes()
		var entry agency.DayLogEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			return fmt.Errorf("%s: unmarshal: %w", filepath.Base(path), err)
		}
		if entry.Day <= startDay {
			continue
		}
		if toDay != 0 && entry.Day > toDay {
			return nil
		}
		if entry.Day != eng.CurrentDay()+1 {
			return fmt.Errorf("day mismatch: want=%d got=%d (file=%s)", eng.CurrentDay()+1, entry.Day, filepath.Base(path))
		}

		pending := make([]agency.CommandEnvelope, 0, len(entry.Commands))
		for _, rc := range entry.Commands {
			pending = append(pending, agency.CommandEnvelope{ClientID: rc.ClientID, Cmd: rc.Cmd})
		}

		gotDigest := eng.StepDay(pending)

		if entry.Day >= verifyFrom {
			*checked++
			if gotDigest != entry.Digest {
				return fmt.Errorf("digest mismatch at day %d: got=%s want=%s", entry.Day, gotDigest, entry.Digest)
			}
		}
	}
	return sc.Err()
}
