package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/pkg/errors"

	"github.com/icewatch/icewatch/status"
)

func checkflags(ctx context.Context, client *status.Client, origin string) (exit bool, err error) {
	checkVerflag()

	if *probePtr && !*listPtr {
		return false, errors.New("-probe requires -l")
	}

	if *listPtr && *interPtr {
		return false, errors.New("-l and -i can't be used together")
	}

	list, err := checkLflag(ctx, client, origin)
	if err != nil {
		return false, errors.Wrap(err, "checkflags error")
	}

	if list {
		return true, nil
	}

	return false, nil
}

func checkLflag(ctx context.Context, client *status.Client, origin string) (bool, error) {
	if *listPtr {
		if err := listFlagFunction(ctx, client, origin); err != nil {
			return false, errors.Wrap(err, "checkLflag error")
		}
		return true, nil
	}

	return false, nil
}

// listFlagFunction fetches the status document once and prints every
// connected mount. With -probe each mount's stream head is sniffed for
// its audio type as well.
func listFlagFunction(ctx context.Context, client *status.Client, origin string) error {
	snap, err := client.Fetch(ctx)
	if err != nil {
		return errors.Wrap(err, "status fetch error")
	}

	boldStart := ""
	boldEnd := ""
	if runtime.GOOS == "linux" {
		boldStart = "\033[1m"
		boldEnd = "\033[0m"
	}

	fmt.Println()
	fmt.Printf("%sListeners:%s %d\n", boldStart, boldEnd, snap.TotalListeners)
	fmt.Printf("%sSources:%s   %d\n", boldStart, boldEnd, snap.TotalSources)
	fmt.Println()

	if len(snap.Mounts) == 0 {
		fmt.Println("No mounts are currently connected.")
		return nil
	}

	for n, m := range snap.Mounts {
		streamURL := status.StreamURL(origin, m.Path)

		fmt.Printf("%sMount %v%s\n", boldStart, n+1, boldEnd)
		fmt.Printf("%s--------%s\n", boldStart, boldEnd)
		fmt.Printf("%sPath:%s        %s\n", boldStart, boldEnd, m.Path)
		fmt.Printf("%sStatus:%s      %s\n", boldStart, boldEnd, m.Status)
		fmt.Printf("%sListeners:%s   %d\n", boldStart, boldEnd, m.Listeners)
		fmt.Printf("%sNow playing:%s %s\n", boldStart, boldEnd, m.NowPlaying)
		fmt.Printf("%sStream URL:%s  %s\n", boldStart, boldEnd, streamURL)

		if *probePtr {
			probe, err := status.ProbeMount(ctx, streamURL)
			switch {
			case err != nil:
				fmt.Printf("%sAudio type:%s  probe failed (%s)\n", boldStart, boldEnd, err)
			case probe.IsAudio:
				fmt.Printf("%sAudio type:%s  %s\n", boldStart, boldEnd, probe.MIME)
			default:
				fmt.Printf("%sAudio type:%s  %s (not audio)\n", boldStart, boldEnd, probe.MIME)
			}
		}

		fmt.Println()
	}

	return nil
}

func checkVerflag() {
	if *versionPtr {
		fmt.Printf("Icewatch Version: %s, ", version)
		fmt.Printf("Build: %s\n", build)
		os.Exit(0)
	}
}
