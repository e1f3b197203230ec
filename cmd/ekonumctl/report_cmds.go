package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/odyssey-erp/ekonum/internal/forecast"
)

func newProjectCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Monthly P&L and cash projection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withService(cmd.Context(), func(svc *forecast.Service) error {
				p, err := svc.ComputeProjection(cmd.Context(), o.request())
				if err != nil {
					return err
				}
				return renderProjection(o.out, o.format, p)
			})
		},
	}
	addWindowFlags(cmd, o)
	return cmd
}

func newVarianceCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "variance",
		Aliases: []string{"bva"},
		Short:   "Budget vs actual per month",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withService(cmd.Context(), func(svc *forecast.Service) error {
				r, err := svc.ComputeBudgetVsActual(cmd.Context(), o.request())
				if err != nil {
					return err
				}
				return renderBudgetVsActual(o.out, o.format, r)
			})
		},
	}
	addWindowFlags(cmd, o)
	return cmd
}

func newScheduleCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule LOAN_ID",
		Short: "Full annuity schedule of one loan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("loan id %q: %w", args[0], err)
			}
			return o.withService(cmd.Context(), func(svc *forecast.Service) error {
				s, err := svc.LoanSchedule(cmd.Context(), id)
				if err != nil {
					return err
				}
				return renderLoanSchedule(o.out, o.format, s)
			})
		},
	}
}
