// Copyright (c) 2026 desokit Contributors.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package reposearch implements keyword search and document retrieval over a
// local tree of repositories, laid out as <root>/<repo>/...
//
// Search walks a fixed set of named repository directories, scores every
// text file by the number of case-insensitive occurrences of the query
// terms, and returns the scoring files with a title and a highlighted
// excerpt, best first.  The package never writes to the tree.
package reposearch
