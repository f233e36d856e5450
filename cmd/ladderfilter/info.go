package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/justyntemme/ladderfilter/pkg/framework/bus"
	"github.com/justyntemme/ladderfilter/pkg/ladderfilter"
	hostplugin "github.com/justyntemme/ladderfilter/pkg/plugin"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show plugin identity, parameters and filter types",
	RunE:  runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	inst, proc, err := newInstance()
	if err != nil {
		return err
	}
	info := inst.Info()
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "%s %s by %s\n", info.Name, info.Version, info.Vendor)
	fmt.Fprintf(out, "id:       %s\n", info.ID)
	fmt.Fprintf(out, "class:    %s\n", info.UIDString())
	fmt.Fprintf(out, "category: %s\n", info.Category)
	fmt.Fprintf(out, "midi:     accepts %v, produces %v, effect %v\n",
		proc.AcceptsMidi(), proc.ProducesMidi(), proc.IsMidiEffect())
	fmt.Fprintf(out, "programs: %d, current %d %q\n",
		proc.NumPrograms(), proc.CurrentProgram(), proc.ProgramName(proc.CurrentProgram()))
	fmt.Fprintf(out, "editor:   %v\n", proc.HasEditor())
	fmt.Fprintf(out, "latency:  %d samples, tail %d samples (%gs)\n",
		inst.GetLatencySamples(), inst.GetTailSamples(), proc.TailLengthSeconds())

	buses := proc.GetBuses()
	for _, dir := range []bus.Direction{bus.DirectionInput, bus.DirectionOutput} {
		for i := int32(0); i < buses.GetBusCount(dir); i++ {
			b := buses.GetBusInfo(dir, i)
			kind := "in "
			if dir == bus.DirectionOutput {
				kind = "out"
			}
			fmt.Fprintf(out, "bus %s:  %s, %d channels, active %v\n", kind, b.Name, b.ChannelCount, b.IsActive)
		}
	}

	factory := hostplugin.GetFactoryInfo()
	fmt.Fprintf(out, "factory:  %s <%s> %s\n", factory.Vendor, factory.Email, factory.URL)
	for i := 0; i < hostplugin.CountClasses(); i++ {
		class, err := hostplugin.GetClassInfo(i)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "class %d:  %s (%s) %x\n", i, class.Name, class.Category, class.CID)
	}
	fmt.Fprintln(out)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKEY\tNAME\tRANGE\tDEFAULT")
	for i := int32(0); i < inst.GetParameterCount(); i++ {
		p, err := inst.GetParameterInfo(i)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%g..%g %s\t%s\n",
			p.ID, p.Key, p.Name, p.Min, p.Max, p.Unit, p.FormatValue(p.DefaultValue))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out, "\nfilter types:")
	current := proc.FilterMode().String()
	for _, it := range ladderfilter.MenuItems() {
		mark := " "
		if it.Name == current {
			mark = "*"
		}
		fmt.Fprintf(out, "%s %d  %s\n", mark, it.ID, it.Name)
	}
	return nil
}
