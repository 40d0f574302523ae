package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/pflag"
	"gitlab.com/maplesense1/sensor.registry/src/production/SNR.Dashboard/client"
	config "gitlab.com/maplesense1/sensor.registry/src/production/SNR.Config"
	logger "gitlab.com/maplesense1/sensor.registry/src/production/SNR.Logger"
	api_models "gitlab.com/maplesense1/sensor.registry/src/production/SNR.Models/api"
	hardware_models "gitlab.com/maplesense1/sensor.registry/src/production/SNR.Models/hardware"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2

	defaultAPIURL = "http://localhost:3001"
)

var errUsage = errors.New("usage")

const usage = `Usage: sensor-dashboard [--api-url URL] [--timeout D] <command> [flags]

Commands:
  list   [--tipo T]                        show sensors, optionally only one tipo
  create --nombre N --tipo T --valor V     register a sensor
  delete <id>                              remove a sensor
  health                                   check the API is up
`

// cli carries what every command needs
type cli struct {
	dashboard *client.Dashboard
	api       *client.APIClient
	logger    *logger.Logger
	stdout    io.Writer
	stderr    io.Writer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags := pflag.NewFlagSet("sensor-dashboard", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.SetInterspersed(false)
	flags.Usage = func() { fmt.Fprint(stderr, usage) }

	apiURL := flags.String("api-url", envOr("SENSOR_API_URL", defaultAPIURL), "base URL of the sensor registry API")
	timeout := flags.Duration("timeout", client.DefaultTimeout, "per-request timeout")
	verbose := flags.BoolP("verbose", "v", false, "log request failures to stderr")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return exitUsage
	}

	level := "error"
	if *verbose {
		level = "debug"
	}
	api := client.NewAPIClient(*apiURL, *timeout)
	c := &cli{
		dashboard: client.NewDashboard(api),
		api:       api,
		logger:    logger.NewLogger(&config.LoggingConfig{Level: level, Format: "text", Output: "stderr"}).WithComponent("dashboard"),
		stdout:    stdout,
		stderr:    stderr,
	}

	command, rest := flags.Arg(0), flags.Args()[1:]
	var err error
	switch command {
	case "list":
		err = c.list(ctx, rest)
	case "create":
		err = c.create(ctx, rest)
	case "delete":
		err = c.delete(ctx, rest)
	case "health":
		err = c.health(ctx)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", command)
		flags.Usage()
		return exitUsage
	}

	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errUsage):
		return exitUsage
	default:
		return exitError
	}
}

func (c *cli) list(ctx context.Context, args []string) error {
	flags := c.subcommand("list")
	sensorType := flags.String("tipo", client.AllTypes, "only show this tipo (exact match)")
	if err := flags.Parse(args); err != nil {
		return errUsage
	}

	if _, err := c.dashboard.Reload(ctx); err != nil {
		return c.fail("Error al cargar sensores", err)
	}
	c.printSensors(c.dashboard.Filter(*sensorType))
	return nil
}

func (c *cli) create(ctx context.Context, args []string) error {
	flags := c.subcommand("create")
	name := flags.String("nombre", "", "sensor name")
	sensorType := flags.String("tipo", "", "sensor tipo, e.g. Temperatura")
	rawValue := flags.String("valor", "", "numeric reading")
	if err := flags.Parse(args); err != nil {
		return errUsage
	}

	if strings.TrimSpace(*name) == "" || strings.TrimSpace(*sensorType) == "" || strings.TrimSpace(*rawValue) == "" {
		c.warn("Por favor completa todos los campos (--nombre, --tipo, --valor)")
		return errUsage
	}
	value, err := api_models.ParseValor(*rawValue)
	if err != nil {
		c.warn(err.Error())
		return errUsage
	}

	created, err := c.dashboard.CreateAndReload(ctx, *name, *sensorType, value)
	if err != nil {
		if created == nil {
			return c.fail("Error al agregar el sensor", err)
		}
		return c.fail("Sensor creado, pero no se pudo recargar la lista", err)
	}

	fmt.Fprintf(c.stdout, "Sensor creado: #%d %s\n\n", created.ID, created.Name)
	c.printSensors(c.dashboard.Sensors())
	return nil
}

func (c *cli) delete(ctx context.Context, args []string) error {
	flags := c.subcommand("delete")
	if err := flags.Parse(args); err != nil {
		return errUsage
	}
	if flags.NArg() != 1 {
		c.warn("delete needs exactly one sensor id")
		return errUsage
	}
	id, err := api_models.ParseSensorID(flags.Arg(0))
	if err != nil {
		c.warn(err.Error())
		return errUsage
	}

	if err := c.dashboard.DeleteAndReload(ctx, id); err != nil {
		return c.fail("Error al eliminar el sensor", err)
	}

	fmt.Fprintf(c.stdout, "%s (#%d)\n\n", api_models.DeleteSensorMessage, id)
	c.printSensors(c.dashboard.Sensors())
	return nil
}

func (c *cli) health(ctx context.Context) error {
	if err := c.api.Health(ctx); err != nil {
		return c.fail("API no disponible", err)
	}
	fmt.Fprintln(c.stdout, "ok")
	return nil
}

func (c *cli) subcommand(name string) *pflag.FlagSet {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.SetOutput(c.stderr)
	return flags
}

// fail prints the user-facing message and logs the underlying error
func (c *cli) fail(action string, err error) error {
	c.logger.Logger.Debug().Err(err).Msg(action)
	c.warn(action + ": " + client.UserMessage(err))
	return err
}

func (c *cli) warn(msg string) {
	color.New(color.FgRed).Fprintln(c.stderr, msg)
}

// printSensors renders the card grid as a table, in API order
func (c *cli) printSensors(sensors []hardware_models.Sensor) {
	if len(sensors) == 0 {
		fmt.Fprintln(c.stdout, "No hay sensores registrados")
		return
	}

	w := tabwriter.NewWriter(c.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNOMBRE\tTIPO\tVALOR")
	for _, s := range sensors {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", s.ID, s.Name, s.Type, formatValue(s.Value))
	}
	_ = w.Flush()
	color.New(color.Faint).Fprintf(c.stdout, "\n%d sensor(es) · actualizado %s\n", len(sensors), time.Now().Format("15:04:05"))
}

func formatValue(v float64) string {
	return fmt.Sprintf("%g", v)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
