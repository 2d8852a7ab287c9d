// Package console runs the interactive text menu over a SubwayService.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/smarttransit/subway-routing/internal/graph"
	"github.com/smarttransit/subway-routing/internal/models"
	"github.com/smarttransit/subway-routing/internal/services"
)

const commandInfo = `1: Reload the data from the MBTA server.
2: List the names of all subway routes.
3: List the subway route with the most stops.
4: List the subway route with the fewest stops.
5: List the subway transfer stops (the stops
   connecting multiple subway routes).
6: Find a route from one stop to another.
q: Quit the program.`

const dataAccessError = "An unexpected error occurred when attempting to access the\nroute data. Please try again.\n"

// errInputClosed means no more input can be read
var errInputClosed = errors.New("input closed")

// Console reads commands from in and writes results to out
type Console struct {
	subway *services.SubwayService
	in     *bufio.Scanner
	out    io.Writer
}

// New creates a console over the given service
func New(subway *services.SubwayService, in io.Reader, out io.Writer) *Console {
	return &Console{
		subway: subway,
		in:     bufio.NewScanner(in),
		out:    out,
	}
}

// Run loads route data and then serves commands until quit is entered or
// input ends. It returns an error only when the initial load fails.
func (c *Console) Run(ctx context.Context) error {
	if err := c.subway.LoadRouteData(ctx); err != nil {
		c.println("A fatal error occurred while attempting to load route data")
		c.println("from the MBTA server to initialize the program.\n")
		return err
	}
	c.println("Welcome to the MBTA subway routing program!")
	c.println("Subway route data has been successfully loaded.\n")

	commands := map[string]func(context.Context) bool{
		"1": c.reloadData,
		"2": c.listRoutes,
		"3": c.listRouteWithMostStops,
		"4": c.listRouteWithFewestStops,
		"5": c.listTransferStops,
		"6": c.findPath,
		"q": c.quit,
	}

	for {
		c.println("Please enter one of the following options (before the colon):")
		c.println(commandInfo + "\n")

		line, err := c.readLine()
		if err != nil {
			c.println("A fatal error occurred while attempting to read input.\n")
			return nil
		}

		command, ok := commands[strings.ToLower(strings.TrimSpace(line))]
		if !ok {
			command = c.invalidCommand
		}

		c.println("")
		shouldQuit := command(ctx)
		c.println("")
		if shouldQuit {
			return nil
		}
	}
}

func (c *Console) reloadData(ctx context.Context) bool {
	if err := c.subway.LoadRouteData(ctx); err != nil {
		c.println("An error occurred while attempting to load new route data.")
		c.println("The previously loaded data has been retained.\n")
		return false
	}
	c.println("The route data was successfully reloaded.")
	return false
}

func (c *Console) listRoutes(context.Context) bool {
	routes, err := c.subway.GetRoutes()
	if err != nil {
		c.println(dataAccessError)
		return false
	}

	names := make([]string, 0, len(routes))
	for _, route := range routes {
		names = append(names, route.Name)
	}
	c.println("The names of all MBTA subway routes are:")
	c.println(formatList(names))
	return false
}

func (c *Console) listRouteWithMostStops(context.Context) bool {
	route, err := c.subway.GetRouteWithMostStops()
	c.renderRouteStopCount("most", route, err)
	return false
}

func (c *Console) listRouteWithFewestStops(context.Context) bool {
	route, err := c.subway.GetRouteWithFewestStops()
	c.renderRouteStopCount("fewest", route, err)
	return false
}

func (c *Console) renderRouteStopCount(kind string, route *models.RouteStopCount, err error) {
	if err != nil {
		c.println(dataAccessError)
		return
	}
	if route == nil {
		c.println("The model has no subway routes.")
		return
	}
	c.println(fmt.Sprintf("The subway route with the %s stops is: %s", kind, route.Route.Name))
	c.println(fmt.Sprintf("This route has %d stops.", route.StopCount))
}

func (c *Console) listTransferStops(context.Context) bool {
	transfers, err := c.subway.GetTransferStops()
	if err != nil {
		c.println(dataAccessError)
		return false
	}
	if len(transfers) == 0 {
		c.println("There are no subway transfer stops.")
		return false
	}

	stopNames := make([]string, 0, len(transfers))
	for name := range transfers {
		stopNames = append(stopNames, name)
	}
	sort.Strings(stopNames)

	c.println("The subway transfer stops, followed by the routes they connect, are:\n")
	for _, name := range stopNames {
		routeNames := make([]string, 0, len(transfers[name]))
		for _, route := range transfers[name] {
			routeNames = append(routeNames, route.Name)
		}
		c.println(fmt.Sprintf("%s: %s", name, formatList(routeNames)))
	}
	return false
}

func (c *Console) findPath(context.Context) bool {
	c.println("Please enter the name of the stop to start from:")
	source, err := c.readLine()
	if err != nil {
		c.println("A fatal error occurred while attempting to read input.\n")
		return true
	}

	c.println("\nPlease enter the name of the destination stop:")
	dest, err := c.readLine()
	if err != nil {
		c.println("A fatal error occurred while attempting to read input.\n")
		return true
	}

	source, dest = strings.TrimSpace(source), strings.TrimSpace(dest)
	if strings.EqualFold(source, dest) {
		c.println("\nYou cannot get a route from a station to itself!")
		return false
	}
	c.println("")

	directions, err := c.subway.FindPath(source, dest)
	switch {
	case errors.Is(err, graph.ErrStationNotFound):
		c.println("The stop names provided were not recognized.")
	case err != nil:
		c.println(dataAccessError)
	case directions == nil:
		c.println("A route between these stops could not be calculated.")
	default:
		c.renderDirections(source, directions)
	}
	return false
}

func (c *Console) renderDirections(source string, directions []models.Direction) {
	currentRoute := ""
	for _, direction := range directions {
		if currentRoute == "" {
			c.println(source)
			c.println(fmt.Sprintf("~ Board a %s train. ~", direction.Route.Name))
		} else if currentRoute != direction.Route.ID {
			c.println(fmt.Sprintf("~ Transfer to a %s train. ~", direction.Route.Name))
		}
		currentRoute = direction.Route.ID
		c.println("  |\n  |\n  |\n" + direction.StopName)
	}
	c.println("\nYou will have arrived at your destination!")
}

func (c *Console) quit(context.Context) bool {
	fmt.Fprint(c.out, "The program has terminated.")
	return true
}

func (c *Console) invalidCommand(context.Context) bool {
	c.println("The option entered was not recognized.")
	return false
}

func (c *Console) readLine() (string, error) {
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", err
		}
		return "", errInputClosed
	}
	return c.in.Text(), nil
}

func (c *Console) println(msg string) {
	fmt.Fprintln(c.out, msg)
}

// formatList joins items in prose: "a", "a and b", "a, b, and c".
// An empty list is "<none>".
func formatList(items []string) string {
	switch len(items) {
	case 0:
		return "<none>"
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
	}
}
